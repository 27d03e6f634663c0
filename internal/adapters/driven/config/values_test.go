package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "ollama", String("ollama", true))
	assert.Equal(t, "", String(42, true))
	assert.Equal(t, "", String("ignored", false))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 1000, 1000},
		{"int64 from toml", int64(200), 200},
		{"integral float", float64(5), 5},
		{"fractional float", 0.5, 0},
		{"numeric string", " 800 ", 800},
		{"text", "many", 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Int(tt.in, true))
		})
	}
	assert.Equal(t, 0, Int(7, false))
}

func TestFloat(t *testing.T) {
	assert.InDelta(t, 0.7, Float(0.7, true), 1e-9)
	assert.InDelta(t, 1.0, Float(int64(1), true), 1e-9)
	assert.InDelta(t, 2.0, Float(2, true), 1e-9)
	assert.InDelta(t, 0.25, Float(float32(0.25), true), 1e-9)
	assert.InDelta(t, 0.6, Float("0.6", true), 1e-9)
	assert.Zero(t, Float("x", true))
	assert.Zero(t, Float(0.7, false))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(true, true))
	assert.True(t, Bool("true", true))
	assert.True(t, Bool("1", true))
	assert.False(t, Bool("nope", true))
	assert.False(t, Bool(1, true))
	assert.False(t, Bool(true, false))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"chunker", "stats"}, StringSlice([]string{"chunker", "stats"}, true))
	assert.Equal(t, []string{"chunker", "stats"}, StringSlice([]any{"chunker", 3, "stats"}, true))
	assert.Equal(t, []string{"chunker", "stats"}, StringSlice("chunker, stats,", true))
	assert.Nil(t, StringSlice(12, true))
	assert.Nil(t, StringSlice([]string{"a"}, false))
}
