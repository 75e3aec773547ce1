package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authorityguard.yaml")
	writeFile(t, path, "scan:\n  timeout: 3s\n")

	reload := func() (*Config, error) {
		cfg := DefaultConfig()
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
		return cfg, nil
	}

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, reload, func(c *Config) { changes <- c }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := os.WriteFile(path, []byte("scan:\n  timeout: 7s\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Scan.Timeout != 7*time.Second {
			t.Errorf("expected reloaded timeout 7s, got %v", cfg.Scan.Timeout)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authorityguard.yaml")
	writeFile(t, path, "")

	calls := make(chan struct{}, 1)
	w, err := NewWatcher(path, func() (*Config, error) { return DefaultConfig(), nil }, func(*Config) { calls <- struct{}{} }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	writeFile(t, filepath.Join(dir, "other.yaml"), "x: 1\n")

	select {
	case <-calls:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}
