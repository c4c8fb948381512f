package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/capstonehub/capstone-hub/internal/version"
)

func main() {
	app := kingpin.New("hubctl", "Administrative commands for the capstone hub")
	app.Version(version.Version)

	g := configureGlobals(app)
	configureHashPasswordCommand(app)
	configureBackupCommands(app, g)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}
