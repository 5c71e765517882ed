package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bar-feature-lab/internal/config"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{12345, "12,345"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCount(tt.n), "formatCount(%d)", tt.n)
	}
}

func TestParseFlags_RequiresBars(t *testing.T) {
	_, err := parseFlags([]string{"--vol-win", "10"})
	assert.Error(t, err)
}

func TestApplyFlags_OverridesOnlyGivenFlags(t *testing.T) {
	f, err := parseFlags([]string{"--bars", "b.csv", "--mom-win", "3", "--store", "memory"})
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Features.VolWin = 30

	require.NoError(t, applyFlags(cfg, f))
	assert.Equal(t, 30, cfg.Features.VolWin)
	assert.Equal(t, 3, cfg.Features.MomWin)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
}

func TestApplyFlags_InvalidBackend(t *testing.T) {
	f, err := parseFlags([]string{"--bars", "b.csv", "--store", "redis"})
	require.NoError(t, err)

	assert.Error(t, applyFlags(config.Default(), f))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	bars := filepath.Join(dir, "bars.csv")
	require.NoError(t, os.WriteFile(bars, []byte("ts,open,high,low,close,volume\n60,9,10,8,9,100\n120,10,11,9,10,200\n"), 0o644))
	out := filepath.Join(dir, "out", "features.csv")

	f, err := parseFlags([]string{"--bars", bars, "--out", out, "--vol-win", "2", "--mom-win", "2", "--log-level", "error"})
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), f, &stdout))

	assert.Equal(t, "[OK] wrote 2 rows → "+out+"\n", stdout.String())
	assert.FileExists(t, out)
}
