package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"both flags prefer quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins over verbose", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"invalid explicit falls back", Config{LogLevel: "shouty"}, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	assert.Equal(t, "trace", validateLogLevel("trace"))
	assert.Equal(t, "warn", validateLogLevel("warn"))
	assert.Equal(t, "info", validateLogLevel("bogus"))
}
