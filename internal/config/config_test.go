package config

import (
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromFlags(nil)
	require.NoError(t, err)

	assert.Len(t, cfg.Drives, 1)
	assert.False(t, cfg.Quick)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.PreserveHierarchy)
	assert.False(t, cfg.IncludeDPAPI)
	assert.False(t, cfg.Unattended)
	assert.True(t, cfg.Flags().Verify)
}

func TestLoadAllFlags(t *testing.T) {
	cfg, err := LoadFromFlags([]string{
		"-drives", "C:\\,D:\\",
		"-dest", "E:\\",
		"-quick",
		"-dry-run",
		"-preserve-hierarchy",
		"-include-dpapi",
		"-no-verify",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"C:\\", "D:\\"}, cfg.Drives)
	assert.Equal(t, "E:\\", cfg.Destination)
	assert.True(t, cfg.Quick)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.PreserveHierarchy)
	assert.True(t, cfg.IncludeDPAPI)

	flags := cfg.Flags()
	assert.True(t, flags.Quick)
	assert.True(t, flags.DryRun)
	assert.True(t, flags.PreserveHierarchy)
	assert.True(t, flags.IncludeDPAPI)
	assert.False(t, flags.Verify)
}

func TestUnattendedRequiresDestination(t *testing.T) {
	t.Setenv(DestinationEnvVar, "")
	_, err := LoadFromFlags([]string{"-unattended"})
	assert.True(t, errors.Is(err, ErrDestinationRequired))
}

func TestUnattendedDestinationFromEnv(t *testing.T) {
	t.Setenv(DestinationEnvVar, "F:\\")
	cfg, err := LoadFromFlags([]string{"-unattended"})
	require.NoError(t, err)
	assert.Equal(t, "F:\\", cfg.Destination)
	assert.True(t, cfg.Unattended)
}

func TestUnattendedFlagOverridesEnv(t *testing.T) {
	t.Setenv(DestinationEnvVar, "F:\\")
	cfg, err := LoadFromFlags([]string{"-unattended", "-dest", "G:\\"})
	require.NoError(t, err)
	assert.Equal(t, "G:\\", cfg.Destination)
}

func TestHelpRequested(t *testing.T) {
	_, err := LoadFromFlags([]string{"-help"})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
