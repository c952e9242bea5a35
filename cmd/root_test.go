package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"], "serve command should be registered")
	assert.True(t, names["version"], "version command should be registered")
}

func TestEnabledWord(t *testing.T) {
	assert.Equal(t, "enabled", enabledWord(true))
	assert.Equal(t, "disabled", enabledWord(false))
}
