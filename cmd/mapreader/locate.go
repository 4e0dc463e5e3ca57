package main

import (
	"context"
	"flag"
	"fmt"
	"io"
)

// runLocate reads a single image and prints the pointer position and bearing.
func runLocate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mapreader", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Usage: mapreader [flags] <image-file>\n")
		return exitFailure
	}
	path := fs.Arg(0)

	setupLogging(stderr, common.debug)
	cfg, err := common.load(fs, nil)
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitUsage
	}
	setupLogging(stderr, cfg.Debug)

	svc, err := wire(cfg, wireOptions{record: common.dbPath != ""})
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitFailure
	}
	defer svc.Close()

	rd, err := svc.app.ProcessFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "The filename to work on is %s.\n", path)
	fmt.Fprintf(stdout, "POSITION %.3f %.3f\n", rd.TipX, rd.TipY)
	fmt.Fprintf(stdout, "BEARING %.1f\n", rd.Bearing)
	return exitOK
}
