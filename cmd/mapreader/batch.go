package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"

	"github.com/ayusman/mapreader/internal/batch"
	"github.com/ayusman/mapreader/internal/config"
)

// runBatch reads every image given on the command line. Each result is
// printed on one line in input order; with -json the stored readings are
// printed as JSON lines.
func runBatch(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mapreader batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	workers := fs.Int("workers", config.DefaultWorkers, "Number of images read concurrently")
	pluginDir := fs.String("plugins", "", "Plugin directory; readings are sent to its plugins")
	publishEndpoint := fs.String("publish", "", "ZeroMQ endpoint to publish readings on")
	asJSON := fs.Bool("json", false, "Print readings as JSON lines")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "Usage: mapreader batch [flags] <image>...\n")
		return exitUsage
	}

	setupLogging(stderr, common.debug)
	cfg, err := common.load(fs, func(cfg *config.Config, name string) {
		switch name {
		case "workers":
			cfg.Workers = *workers
		case "plugins":
			cfg.PluginDir = *pluginDir
		case "publish":
			cfg.PublishEndpoint = *publishEndpoint
		}
	})
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitUsage
	}
	setupLogging(stderr, cfg.Debug)

	svc, err := wire(cfg, wireOptions{record: common.dbPath != "", plugins: *pluginDir != ""})
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitFailure
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items, runErr := batch.New(svc.app, cfg.Workers).Run(ctx, fs.Args())
	for _, it := range items {
		printItem(stdout, it, *asJSON)
	}

	sum := batch.Summarize(items)
	if runErr != nil || sum.Failed > 0 || sum.Skipped > 0 {
		return exitFailure
	}
	return exitOK
}

func printItem(w io.Writer, it batch.Item, asJSON bool) {
	if asJSON && it.Reading != nil {
		line, err := sonic.Marshal(it.Reading)
		if err == nil {
			fmt.Fprintf(w, "%s\n", line)
			return
		}
	}

	switch {
	case it.Err != nil:
		fmt.Fprintf(w, "%s ERROR %v\n", it.Path, it.Err)
	default:
		fmt.Fprintf(w, "%s POSITION %.3f %.3f BEARING %.1f\n", it.Path, it.Reading.TipX, it.Reading.TipY, it.Reading.Bearing)
	}
}
