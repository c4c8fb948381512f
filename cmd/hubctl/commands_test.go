package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/capstonehub/capstone-hub/internal/blob"
	"github.com/capstonehub/capstone-hub/internal/config"
)

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, HashPasswordCommand(HashPasswordInput{Password: "s3cret", Stdout: &out}))
	hash := strings.TrimSpace(out.String())
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	out.Reset()
	require.NoError(t, HashPasswordCommand(HashPasswordInput{Stdin: strings.NewReader("from-stdin\n"), Stdout: &out}))
	hash = strings.TrimSpace(out.String())
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))

	err := HashPasswordCommand(HashPasswordInput{Stdin: strings.NewReader(""), Stdout: &out})
	require.Error(t, err)
}

func TestBackupCommands(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = "file:hubctl_backup?mode=memory&cache=shared"
	cfg.Auth.AdminPassword = "admin"
	cfg.Backup.Driver = "fs"
	cfg.Backup.Dir = t.TempDir()

	var stdout, stderr bytes.Buffer
	input := BackupCommandInput{Config: cfg, Stdout: &stdout, Stderr: &stderr}
	require.NoError(t, BackupRunCommand(ctx, input, "warn"))
	require.Contains(t, stdout.String(), "wrote backups/capstone_")
	require.Contains(t, stdout.String(), "(0 records")

	stdout.Reset()
	input.JSONOutput = true
	require.NoError(t, BackupListCommand(ctx, input, "warn"))
	var infos []blob.Info
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &infos))
	require.Len(t, infos, 1)
	require.True(t, strings.HasSuffix(infos[0].Key, ".json.zst"))

	stdout.Reset()
	input.JSONOutput = false
	require.NoError(t, BackupListCommand(ctx, input, "warn"))
	require.True(t, strings.HasPrefix(stdout.String(), "KEY"))
}
