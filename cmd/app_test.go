package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/dividends/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadedPortfolioKeepsRescaling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.csv")
	require.NoError(t, os.WriteFile(path, []byte("Ticker;Peso\nBBAS3.SA;50\nWEGE3.SA;30\nITSA4.SA;20\n"), 0o644))
	up, err := readUpload(path)
	require.NoError(t, err)

	a := &app{file: config.Default(), uploaded: up.Portfolio}
	p, err := a.portfolio()
	require.NoError(t, err)
	assert.True(t, p.Rescaled(), "50/30/20 is rescaled to sum to 1")
	assert.Len(t, p.Positions(), 3)
}

func TestConfiguredPortfolio(t *testing.T) {
	a := &app{file: config.Default()}
	p, err := a.portfolio()
	require.NoError(t, err)
	assert.Len(t, p.Positions(), 10)
	assert.False(t, p.Rescaled())
}
