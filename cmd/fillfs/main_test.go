package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRootCmd() {
	rootCmd.SilenceUsage = false
	randomFlag, zeroFlag, statusFlag, verboseFlag = false, false, false, false
	blockSize, configPath, reportPath = "", "", ""
}

func TestUsageOnlyForStartupErrors(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)

	t.Run("bad size token keeps usage", func(t *testing.T) {
		resetRootCmd()

		rootCmd.SetArgs([]string{t.TempDir(), "5X"})
		require.Error(t, rootCmd.Execute())
		assert.False(t, rootCmd.SilenceUsage)
	})

	t.Run("resolved job silences usage", func(t *testing.T) {
		resetRootCmd()

		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("fill:\n  idle_priority: false\n"), 0644))

		victim := filepath.Join(dir, "victim.bin")
		require.NoError(t, os.WriteFile(victim, make([]byte, 4096), 0644))

		rootCmd.SetArgs([]string{"-c", cfgPath, "-b", "4K", victim, "4K"})
		require.NoError(t, rootCmd.Execute())
		assert.True(t, rootCmd.SilenceUsage)
	})
}
