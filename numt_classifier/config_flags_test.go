package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onsm/numt_classifier/common"
	"onsm/numt_classifier/config"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Int("threads", 1, "")
	addPairingFlags(cmd)
	addScoringFlags(cmd)
	addSummaryFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_DefaultsWhenNothingSet(t *testing.T) {
	cfg, err := loadConfig(newFlagCmd(t))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "onsm.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
threads = 3

[thresholds]
call_threshold = 0.1
highconf_threshold = 0.4

[pairing]
tolerance = 25
`), 0o644))
	t.Setenv(config.EnvCallThresh, "0.2")

	cmd := newFlagCmd(t, "--config", path, "--tolerance", "10", "--singleton-policy", "retain", "--nuclear-bp-total", "5000")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Threads, "file value")
	assert.Equal(t, 0.4, cfg.Thresholds.HighConf, "file value")
	assert.Equal(t, 0.2, cfg.Thresholds.Call, "environment beats file")
	assert.Equal(t, 10, cfg.Pairing.Tolerance, "flag beats file")
	assert.Equal(t, config.SingletonRetain, cfg.Pairing.Singletons)
	assert.Equal(t, uint64(5000), cfg.Summary.NuclearBPTotal)
	assert.Equal(t, config.DefaultWeightAlignment, cfg.Weights.Alignment)
}

func TestLoadConfig_RejectsInvalidFlag(t *testing.T) {
	_, err := loadConfig(newFlagCmd(t, "--span-merge", "average"))
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}
