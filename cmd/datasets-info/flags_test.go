package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default", args: nil, want: "output"},
		{name: "long", args: []string{"--output_dir", "reports"}, want: "reports"},
		{name: "long equals", args: []string{"--output_dir=reports"}, want: "reports"},
		{name: "short", args: []string{"-od", "reports"}, want: "reports"},
		{name: "short equals", args: []string{"-od=reports"}, want: "reports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.OutputDir)
		})
	}
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := parseFlags([]string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)

	_, err = parseFlags([]string{"--bogus"})
	assert.Error(t, err)
}

func TestNormalizeArgsStopsAtTerminator(t *testing.T) {
	got := normalizeArgs([]string{"-od", "a", "--", "-od"})
	assert.Equal(t, []string{"--output_dir", "a", "--", "-od"}, got)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = newLogger("chatty")
	assert.Error(t, err)
}
