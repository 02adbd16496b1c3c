package mylog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntry(t *testing.T) {
	e := entry{
		Component: "orchestrator",
		Labels:    map[string]string{"session": "123"},
		Severity:  string(SeverityInfo),
		Message:   "orchestrator:Fetch basket",
	}

	parsed := map[string]any{}
	err := json.Unmarshal([]byte(e.String()), &parsed)
	assert.NoError(t, err)
	assert.Equal(t, "INFO", parsed["severity"])
	assert.Equal(t, "orchestrator:Fetch basket", parsed["message"])
	assert.NotContains(t, parsed, "logging.googleapis.com/trace")
}
