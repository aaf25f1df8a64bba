package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/w920801-a11y/climate-try/internal/weather"
)

// snapshotSchema mirrors the weather.Snapshot payload the prompt demands, in
// the oracle's structured-output schema dialect. Only attached to non-search
// attempts; the API rejects a response schema combined with the search tool.
var snapshotSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "locationName": {"type": "STRING"},
    "current": {
      "type": "OBJECT",
      "properties": {
        "temp": {"type": "NUMBER"},
        "condition": {"type": "STRING"},
        "humidity": {"type": "NUMBER"},
        "windSpeed": {"type": "NUMBER"},
        "feelsLike": {"type": "NUMBER"},
        "uvIndex": {"type": "NUMBER"}
      },
      "required": ["temp", "condition", "humidity", "windSpeed", "feelsLike", "uvIndex"]
    },
    "forecast": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "date": {"type": "STRING"},
          "high": {"type": "NUMBER"},
          "low": {"type": "NUMBER"},
          "condition": {"type": "STRING"}
        },
        "required": ["date", "high", "low", "condition"]
      }
    },
    "aiInsight": {"type": "STRING"},
    "clothingAdvice": {"type": "STRING"},
    "activityAdvice": {"type": "STRING"}
  },
  "required": ["locationName", "current", "forecast", "aiInsight", "clothingAdvice", "activityAdvice"]
}`)

func buildPrompt(loc weather.Location, searchEnabled bool) string {
	var b strings.Builder

	if searchEnabled {
		fmt.Fprintf(&b, "Search the web for the current weather and the 5-day forecast for %s.\n", loc.Describe())
	} else {
		fmt.Fprintf(&b, "Without searching the web, predict the most likely current weather and 5-day forecast for %s based on your knowledge of the region's climate and season.\n", loc.Describe())
		b.WriteString("Make clear in the insight text that this is a prediction, not a live observation.\n")
	}

	b.WriteString(`Reply with a single JSON object and nothing else, using exactly this shape:
{
  "locationName": "resolved place name",
  "current": {"temp": 0, "condition": "", "humidity": 0, "windSpeed": 0, "feelsLike": 0, "uvIndex": 0},
  "forecast": [{"date": "", "high": 0, "low": 0, "condition": ""}],
  "aiInsight": "",
  "clothingAdvice": "",
  "activityAdvice": ""
}
Temperatures are in Celsius, wind speed in km/h, humidity in percent.
The forecast array has exactly 5 entries in chronological order starting today.
aiInsight is a short narrative about today's weather, clothingAdvice suggests what to wear, activityAdvice suggests suitable activities.`)

	return b.String()
}

// stripCodeFences unwraps a markdown-fenced reply. Search-grounded answers
// cannot use structured output, so the oracle occasionally wraps the JSON in
// a ```json block despite the prompt.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
