// GameMode - mouse side-button remapper and Windows-key guard for games
package main

import (
	"os"
	"strings"

	"gamemode/internal/config"
	"gamemode/internal/logging"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/rs/zerolog"
)

var version = "0.3.0"

// LogFlags configures the process logger.
type LogFlags struct {
	Level string `help:"Log level." default:"info" enum:"trace,debug,info,warn,error" env:"GAMEMODE_LOG_LEVEL"`
	File  string `help:"Also write JSON logs to this file." type:"path" env:"GAMEMODE_LOG_FILE"`
}

// Globals are the flags shared by every command.
type Globals struct {
	Config   string   `help:"Flag defaults file (.json, .yaml or .toml)." type:"path" env:"GAMEMODE_CONFIG"`
	Settings string   `help:"Settings file. Defaults to settings.json in the user config dir." type:"path" env:"GAMEMODE_SETTINGS"`
	Log      LogFlags `embed:"" prefix:"log."`
}

// CLI is the command tree.
type CLI struct {
	Globals `embed:""`

	Run        RunCmd        `cmd:"" default:"withargs" help:"Run the game-mode service (default)."`
	Monitor    MonitorCmd    `cmd:"" help:"Log every decoded input event without changing anything."`
	Signatures SignaturesCmd `cmd:"" help:"Manage button signatures."`
	Autostart  AutostartCmd  `cmd:"" help:"Start with Windows."`
	Version    VersionCmd    `cmd:"" help:"Show version."`
}

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := config.CandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gamemode"),
		kong.Description("Remaps mouse side buttons to game keys and blocks the Windows key while playing."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		// Flags and env override values loaded from these files.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := logging.Setup(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.Bind(&cli.Globals)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("GAMEMODE_CONFIG")
}

// settingsManager opens and loads the persisted settings.
func (g *Globals) settingsManager(logger *zerolog.Logger) (*config.Manager, error) {
	log := logging.Sub(logger, "config")
	var mgr *config.Manager
	if g.Settings != "" {
		mgr = config.NewManagerAt(g.Settings, log)
	} else {
		var err error
		if mgr, err = config.NewManager(log); err != nil {
			return nil, err
		}
	}
	if err := mgr.Load(); err != nil {
		return nil, err
	}
	return mgr, nil
}
