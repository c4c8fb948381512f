package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"

	"github.com/capstonehub/capstone-hub/internal/app"
	"github.com/capstonehub/capstone-hub/internal/backup"
	"github.com/capstonehub/capstone-hub/internal/config"
	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/logging"
)

type globals struct {
	ConfigPath string
	LogLevel   string
}

func configureGlobals(app *kingpin.Application) *globals {
	g := &globals{}
	app.Flag("config", "Path to a YAML config file").
		Envar("CAPSTONE_CONFIG_PATH").
		StringVar(&g.ConfigPath)
	app.Flag("log-level", "Log level for command output on stderr").
		Default("warn").
		EnumVar(&g.LogLevel, "debug", "info", "warn", "error")
	return g
}

// HashPasswordInput contains the input for the hash-password command.
type HashPasswordInput struct {
	Password string
	Stdin    io.Reader
	Stdout   io.Writer
}

func configureHashPasswordCommand(app *kingpin.Application) {
	input := HashPasswordInput{}
	cmd := app.Command("hash-password", "Print a bcrypt hash for ADMIN_PASSWORD_HASH or VIEWER_PASSWORD_HASH")
	cmd.Flag("password", "Password to hash; read from stdin when omitted").
		StringVar(&input.Password)

	cmd.Action(func(*kingpin.ParseContext) error {
		app.FatalIfError(HashPasswordCommand(input), "hash-password")
		return nil
	})
}

// HashPasswordCommand hashes the password given by flag or the first line
// of stdin.
func HashPasswordCommand(input HashPasswordInput) error {
	stdin, stdout := input.Stdin, input.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	password := input.Password
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

// BackupCommandInput contains the input for the backup commands.
type BackupCommandInput struct {
	Config     config.Config
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

func configureBackupCommands(app *kingpin.Application, g *globals) {
	input := BackupCommandInput{}
	backupCmd := app.Command("backup", "Manage backups")
	backupCmd.Flag("json", "Output in JSON format").BoolVar(&input.JSONOutput)

	load := func() error {
		cfg, err := config.LoadFile(g.ConfigPath)
		if err != nil {
			return err
		}
		input.Config = cfg
		input.Stderr = os.Stderr
		return nil
	}

	backupCmd.Command("run", "Write a backup of every record now").
		Action(func(*kingpin.ParseContext) error {
			app.FatalIfError(load(), "config")
			app.FatalIfError(BackupRunCommand(context.Background(), input, g.LogLevel), "backup run")
			return nil
		})

	backupCmd.Command("list", "List stored backups, newest first").
		Action(func(*kingpin.ParseContext) error {
			app.FatalIfError(load(), "config")
			app.FatalIfError(BackupListCommand(context.Background(), input, g.LogLevel), "backup list")
			return nil
		})
}

func openBackups(ctx context.Context, input BackupCommandInput, logLevel string) (*backup.Service, func() error, error) {
	stderr := input.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := logging.New(stderr, logLevel)

	stores, err := app.OpenStores(ctx, input.Config.DB)
	if err != nil {
		return nil, nil, err
	}
	blobs, err := app.OpenBlobStore(ctx, input.Config.Backup)
	if err != nil {
		_ = stores.Close()
		return nil, nil, err
	}

	activitySvc := activity.NewService(stores.Activity, logger)
	entities := entity.NewService(stores.Records, activitySvc, logger)
	svc := backup.NewService(entities, blobs, activitySvc, backup.Config{Keep: input.Config.Backup.Keep}, logger)
	return svc, stores.Close, nil
}

// BackupRunCommand writes one backup and reports where it went.
func BackupRunCommand(ctx context.Context, input BackupCommandInput, logLevel string) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	svc, closeStores, err := openBackups(ctx, input, logLevel)
	if err != nil {
		return err
	}
	defer closeStores()

	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if input.JSONOutput {
		return json.NewEncoder(stdout).Encode(res)
	}
	_, err = fmt.Fprintf(stdout, "wrote %s (%d records, %d bytes)\n", res.Key, res.Records, res.Size)
	for _, key := range res.Pruned {
		fmt.Fprintf(stdout, "pruned %s\n", key)
	}
	return err
}

// BackupListCommand prints stored backups newest first.
func BackupListCommand(ctx context.Context, input BackupCommandInput, logLevel string) error {
	stdout := input.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	svc, closeStores, err := openBackups(ctx, input, logLevel)
	if err != nil {
		return err
	}
	defer closeStores()

	infos, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if input.JSONOutput {
		return json.NewEncoder(stdout).Encode(infos)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.UTC().Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
