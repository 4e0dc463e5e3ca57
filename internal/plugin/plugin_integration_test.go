package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestPlugin_ReadingLog_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	// Find the built plugin
	pluginDir := findPluginDir("reading-log")
	if pluginDir == "" {
		t.Skip("reading-log plugin not built")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("reading-log")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	logPath := filepath.Join(t.TempDir(), "readings.csv")
	config, err := sonic.Marshal(map[string]string{"path": logPath})
	if err != nil {
		t.Fatal(err)
	}

	executor := NewExecutor(5000)
	for i := 0; i < 2; i++ {
		resp, err := executor.Execute(context.Background(), plug, &Request{
			Action:  EventReading,
			Reading: testReading(),
			Config:  config,
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !resp.Success {
			t.Fatalf("plugin failed: %s", resp.Error)
		}
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[1], "r-1,north.png,ok,") {
		t.Errorf("unexpected row %q", lines[1])
	}

	// Missing reading is rejected.
	resp, err := executor.Execute(context.Background(), plug, &Request{Action: EventReading, Config: config})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for request without reading")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, "plugin.json")
		binary := filepath.Join(dir, name)
		if _, err := os.Stat(manifest); err != nil {
			continue
		}
		if _, err := os.Stat(binary); err == nil {
			return dir
		}
	}
	return ""
}
