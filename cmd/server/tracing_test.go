package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerProvider(t *testing.T) {
	t.Run("debug exports finished spans on shutdown", func(t *testing.T) {
		var out bytes.Buffer
		tp, err := newTracerProvider(true, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "todo.store/GetList")
		span.End()
		require.NoError(t, tp.Shutdown(context.Background()))

		assert.Contains(t, out.String(), `"Name":"todo.store/GetList"`)
		assert.Contains(t, out.String(), serviceName)
	})

	t.Run("without debug spans record but are not exported", func(t *testing.T) {
		var out bytes.Buffer
		tp, err := newTracerProvider(false, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(context.Background(), "todo.store/GetList")
		assert.True(t, span.IsRecording())
		span.End()
		require.NoError(t, tp.Shutdown(context.Background()))

		assert.Empty(t, out.String())
	})
}
