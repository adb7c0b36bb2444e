package router

import (
	"encoding/json"
	"strings"
)

// WeatherParams is the structured argument the model (or the keyword
// fallback) extracts for the weather tool.
type WeatherParams struct {
	Location string `json:"location"`
	Date     string `json:"date"`
}

type directive struct {
	Function string        `json:"function"`
	Data     *WeatherParams `json:"data"`
}

// parseDirective pulls a JSON classification signal out of the model's text.
// Models wrap JSON in code fences or prose at will, so this trims fences and
// scans for the outermost object before decoding.
func parseDirective(output string) (directive, bool) {
	clean := strings.TrimSpace(output)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return directive{}, false
	}
	var d directive
	if err := json.Unmarshal([]byte(clean[start:end+1]), &d); err != nil {
		return directive{}, false
	}
	if d.Function == "" {
		return directive{}, false
	}
	return d, true
}
