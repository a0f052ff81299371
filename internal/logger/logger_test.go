package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger("")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestLoggingRW(t *testing.T) {
	rec := httptest.NewRecorder()
	data := &ResponseData{}
	lw := &LoggingRW{ResponseWriter: rec, ResponseData: data}

	lw.WriteHeader(http.StatusCreated)
	_, err := lw.Write([]byte("hello"))
	require.NoError(t, err)
	_, err = lw.Write([]byte(", world"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, data.Status)
	assert.Equal(t, 12, data.Size)
	assert.Equal(t, "hello, world", rec.Body.String())
}

func TestLoggingRWImplicitStatus(t *testing.T) {
	data := &ResponseData{}
	lw := &LoggingRW{ResponseWriter: httptest.NewRecorder(), ResponseData: data}

	_, err := lw.Write([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, data.Status)
}
