package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{" warning ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	l, err := New(false, "debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New(true, "warn")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New(false, "nope")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
