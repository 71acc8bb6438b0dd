package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("production logs JSON and drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, false)
		log.Debug("hidden")
		log.Info("list created", "list_id", "abc")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "list created", entry["msg"])
		assert.Equal(t, "abc", entry["list_id"])
	})

	t.Run("debug mode logs text including debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, true)
		log.Debug("visible")
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=visible")
	})
}
