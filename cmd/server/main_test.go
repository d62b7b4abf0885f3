package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanupRequiresOneTarget(t *testing.T) {
	t.Setenv("DEV", "true")
	t.Setenv("LOG_LEVEL", "error")
	for _, args := range [][]string{
		{"cleanup"},
		{"cleanup", "--user", "u1", "--all"},
	} {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		err := cmd.Execute()
		require.ErrorContains(t, err, "exactly one of --user or --all", "args %v", args)
	}
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "cleanup"} {
		require.True(t, names[want], "missing %s command", want)
	}
}

func TestNewSenderAndDrafter_Unconfigured(t *testing.T) {
	t.Setenv("DEV", "true")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("RESEND_API_KEY", "")
	a := &app{}
	require.NoError(t, a.init())

	s, err := newSender(a.cfg.Mail)
	require.Error(t, err)
	require.Nil(t, s)

	d, err := newDrafter(t.Context(), a.cfg.AI)
	require.Error(t, err)
	require.Nil(t, d)
}
