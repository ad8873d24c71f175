package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hire-match/internal/domain/actor"
	"hire-match/internal/pkg/jwt"
)

func TestRootRegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "token", "seed"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.Equal(t, appName, rootCmd.Use)
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("APP_NAME", "hire-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_HTTP_PORT", "8080")
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "hire-match")

	id := uuid.New()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"token", "--actor-id", id.String(), "--role", "business"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	claims, err := jwt.NewHMACService("cli-secret", "hire-match", time.Hour).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, actor.Actor{ID: id, Role: actor.RoleBusiness}, claims.Actor())
}

func TestTokenCommandRejectsUnknownRole(t *testing.T) {
	t.Setenv("APP_NAME", "hire-match")
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_HTTP_PORT", "8080")
	t.Setenv("JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"token", "--actor-id", uuid.NewString(), "--role", "admin"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	assert.Error(t, rootCmd.Execute())
}
