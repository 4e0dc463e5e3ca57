package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/mapreader/internal/config"
	"github.com/ayusman/mapreader/internal/server"
	"github.com/ayusman/mapreader/internal/tray"
)

// runServe runs the HTTP API until interrupted, optionally with a tray menu.
func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("mapreader serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", config.DefaultAddr, "HTTP listen address")
	staticDir := fs.String("static", "", "Directory of static dashboard files")
	pluginDir := fs.String("plugins", config.DefaultPluginDir, "Plugin directory")
	publishEndpoint := fs.String("publish", "", "ZeroMQ endpoint to publish readings on")
	withTray := fs.Bool("tray", false, "Show a system tray menu")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	setupLogging(stderr, common.debug)
	cfg, err := common.load(fs, func(cfg *config.Config, name string) {
		switch name {
		case "addr":
			cfg.Addr = *addr
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

	svc, err := wire(cfg, wireOptions{record: true, plugins: true})
	if err != nil {
		fmt.Fprintf(stderr, "mapreader: %v\n", err)
		return exitFailure
	}
	defer svc.Close()

	webDir := *staticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		App:       svc.app,
		Plugins:   svc.plugins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*withTray {
		if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
			log.Error().Err(err).Msg("server failed")
			return exitFailure
		}
		return exitOK
	}

	// The tray owns the main goroutine; the server runs beside it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := tray.New()
	t.OnDashboard(func() { openBrowser(dashboardURL(cfg.Addr)) })
	t.OnQuit(cancel)
	svc.app.OnReading(t.SetLastReading)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
		t.Quit()
	}()

	t.Run()
	cancel()
	if err := <-errCh; err != nil {
		log.Error().Err(err).Msg("server failed")
		return exitFailure
	}
	fmt.Fprintln(stdout, "stopped")
	return exitOK
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mapreader/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mapreader", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
