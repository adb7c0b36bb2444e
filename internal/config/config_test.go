package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadSingleProvider(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"ai": {
			"provider": "openai",
			"data": {"api_key": "k"},
			"model": "qwen-plus",
			"embed_model": "text-embedding-v3"
		},
		"kb": {"file_store": {"type": "local", "data": {"root": "./data"}}},
		"auth": {"jwt_secret": "secret"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	backends := cfg.AI.Backends()
	require.Len(t, backends, 1)
	require.Equal(t, "openai", backends[0].Provider)
}

func TestLoadProviderList(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"ai": {
			"providers": [
				{"provider": "openai", "data": {"api_key": "primary"}},
				{"provider": "gemini", "data": {"api_key": "backup"}}
			],
			"model": "qwen-plus",
			"embed_model": "text-embedding-v3"
		},
		"kb": {"file_store": {"type": "local", "data": {"root": "./data"}}},
		"auth": {"jwt_secret": "secret"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	backends := cfg.AI.Backends()
	require.Len(t, backends, 2)
	require.Equal(t, "openai", backends[0].Provider)
	require.Equal(t, "gemini", backends[1].Provider)
}

func TestLoadProviderListOverridesSingle(t *testing.T) {
	cfg := &AIConfig{
		Provider:  "openai",
		Providers: []AIProviderConfig{{Provider: "gemini"}},
	}
	backends := cfg.Backends()
	require.Len(t, backends, 1)
	require.Equal(t, "gemini", backends[0].Provider)
}

func TestLoadRejectsMissingProviders(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"ai": {
			"model": "qwen-plus",
			"embed_model": "text-embedding-v3"
		},
		"kb": {"file_store": {"type": "local", "data": {"root": "./data"}}},
		"auth": {"jwt_secret": "secret"}
	}`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ai.provider")
}

func TestLoadRejectsUnnamedProviderEntry(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"ai": {
			"providers": [
				{"provider": "openai"},
				{"data": {"api_key": "k"}}
			],
			"model": "qwen-plus",
			"embed_model": "text-embedding-v3"
		},
		"kb": {"file_store": {"type": "local", "data": {"root": "./data"}}},
		"auth": {"jwt_secret": "secret"}
	}`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "providers[1]")
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9901,
		"ai": {
			"provider": "openai",
			"model": "qwen-plus",
			"embed_model": "text-embedding-v3"
		},
		"kb": {"file_store": {"type": "local", "data": {"root": "./data"}}},
		"auth": {"jwt_secret": "secret"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, cfg.KB.ChunkSize)
	require.Equal(t, 3, cfg.KB.DefaultTopK)
	require.Equal(t, 0.70, cfg.FixedQA.Threshold)
	require.Equal(t, 4, cfg.Session.Window)
	require.Equal(t, "mock", cfg.Weather.Type)
}
