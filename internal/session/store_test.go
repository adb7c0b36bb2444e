package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiexing/askhub/internal/model"
)

func TestStoreWindowTrimsHistory(t *testing.T) {
	s := NewStore(4)
	for i := 0; i < 5; i++ {
		s.Append("sess",
			model.Message{Role: model.RoleUser, Content: fmt.Sprintf("q%d", i)},
			model.Message{Role: model.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	got := s.Window("sess")
	require.Len(t, got, 4)
	require.Equal(t, "q3", got[0].Content)
	require.Equal(t, "a4", got[3].Content)
}

func TestStoreWindowUnknownSession(t *testing.T) {
	s := NewStore(4)
	require.Nil(t, s.Window("missing"))
	require.Nil(t, s.Window(""))
}

func TestStoreWindowReturnsCopy(t *testing.T) {
	s := NewStore(4)
	s.Append("sess", model.Message{Role: model.RoleUser, Content: "original"})
	got := s.Window("sess")
	got[0].Content = "mutated"
	require.Equal(t, "original", s.Window("sess")[0].Content)
}

func TestStoreClear(t *testing.T) {
	s := NewStore(4)
	s.Append("sess", model.Message{Role: model.RoleUser, Content: "hello"})
	require.Equal(t, 1, s.Len())
	s.Clear("sess")
	require.Equal(t, 0, s.Len())
	require.Nil(t, s.Window("sess"))
}

func TestStoreSessionsIsolated(t *testing.T) {
	s := NewStore(4)
	s.Append("a", model.Message{Role: model.RoleUser, Content: "from a"})
	s.Append("b", model.Message{Role: model.RoleUser, Content: "from b"})
	require.Equal(t, "from a", s.Window("a")[0].Content)
	require.Equal(t, "from b", s.Window("b")[0].Content)
}

func TestStoreEvictIdle(t *testing.T) {
	s := NewStore(4)
	s.Append("stale", model.Message{Role: model.RoleUser, Content: "old"})
	s.Append("fresh", model.Message{Role: model.RoleUser, Content: "new"})

	// a negative idle bound puts the cutoff in the future: everything idles out
	removed := s.EvictIdle(context.Background(), -time.Second)
	require.Equal(t, 2, removed)
	require.Equal(t, 0, s.Len())
}

func TestStoreEvictIdleKeepsActive(t *testing.T) {
	s := NewStore(4)
	s.Append("sess", model.Message{Role: model.RoleUser, Content: "hi"})
	removed := s.EvictIdle(context.Background(), time.Hour)
	require.Equal(t, 0, removed)
	require.Equal(t, 1, s.Len())
}

func TestStoreDefaultWindow(t *testing.T) {
	s := NewStore(0)
	for i := 0; i < 6; i++ {
		s.Append("sess", model.Message{Role: model.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	require.Len(t, s.Window("sess"), 4)
}
