// Command mapreader reads the position and heading of a red pointer on a map
// image.
//
// Usage:
//
//	mapreader [flags] <image>             print POSITION and BEARING
//	mapreader batch [flags] <image>...    read many images concurrently
//	mapreader serve [flags]               run the HTTP API
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/config"
	"github.com/ayusman/mapreader/internal/mapframe"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "batch":
			return runBatch(args[1:], stdout, stderr)
		case "serve":
			return runServe(args[1:], stdout, stderr)
		case "help", "-h", "--help":
			usage(stderr)
			return exitOK
		}
	}
	return runLocate(args, stdout, stderr)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  mapreader [flags] <image>
  mapreader batch [flags] <image>...
  mapreader serve [flags]

Run "mapreader <command> -h" for the flags of a command.
`)
}

// commonFlags are accepted by every command. Values given on the command
// line override the configuration file.
type commonFlags struct {
	configPath string
	debug      bool
	detectMap  bool
	northUp    bool
	dbPath     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "JSON configuration file")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&c.detectMap, "detect-map", false, "Find and rectify the map before reading the pointer")
	fs.BoolVar(&c.northUp, "north-up", false, "Assume north is up instead of reading the green arrow")
	fs.StringVar(&c.dbPath, "db", "", "SQLite database for reading history")
}

// load reads the configuration file and applies the flags set on fs.
func (c *commonFlags) load(fs *flag.FlagSet, apply func(cfg *config.Config, name string)) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = c.debug
		case "detect-map":
			if c.detectMap {
				cfg.Pipeline.Map.Mode = mapframe.ModeDetect
			} else {
				cfg.Pipeline.Map.Mode = mapframe.ModeFrame
			}
		case "north-up":
			cfg.Pipeline.Reference.AssumeNorthUp = c.northUp
		case "db":
			cfg.DBPath = c.dbPath
		default:
			if apply != nil {
				apply(&cfg, f.Name)
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging points the global logger at w.
func setupLogging(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w), TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}
