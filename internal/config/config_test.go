package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/ploxvm/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.False(t, cfg.PrintCode)
	require.False(t, cfg.TraceExecution)
	require.Equal(t, 256, cfg.StackMax)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLOXVM_PRINT_CODE", "true")
	t.Setenv("PLOXVM_STACK_MAX", "1024")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.PrintCode)
	require.Equal(t, 1024, cfg.StackMax)
}
