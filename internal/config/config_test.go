package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultApplied(t *testing.T) {
	cfg := Default()
	if cfg.Server.Address != "0.0.0.0" || cfg.Server.Port != 6379 {
		t.Fatalf("got %+v", cfg.Server)
	}
	if cfg.Dir != "data" || cfg.DBFile != "dump.db" {
		t.Fatalf("got dir=%q dbfile=%q", cfg.Dir, cfg.DBFile)
	}
	if cfg.Metrics.ShardCount != 32 {
		t.Fatalf("got shard count %d", cfg.Metrics.ShardCount)
	}
}

func TestSnapshotPathJoinsDirAndDBFile(t *testing.T) {
	cfg := Default()
	cfg.Dir = "/var/lib/kvflowd"
	cfg.DBFile = "snap.db"
	if got := cfg.SnapshotPath(); got != filepath.Join("/var/lib/kvflowd", "snap.db") {
		t.Fatalf("got %q", got)
	}
}

func TestAddrFormatsHostPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Address = "127.0.0.1"
	cfg.Server.Port = 9999
	if got := cfg.Addr(); got != "127.0.0.1:9999" {
		t.Fatalf("got %q", got)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestValidateRejectsNegativeRateLimit(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.CommandsPerSecond = -1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative rate limit")
	}
}

func TestLoadParsesYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvflowd.yaml")
	contents := "server:\n  address: 127.0.0.1\n  port: 7000\ndir: /tmp/kv\ndbfilename: snap.db\nrateLimit:\n  commandsPerSecond: 100\nmetrics:\n  address: 127.0.0.1:9090\n  shardCount: 8\nlogging:\n  dir: /tmp/kv-logs\n  level: debug\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1" || cfg.Server.Port != 7000 {
		t.Fatalf("got %+v", cfg.Server)
	}
	if cfg.Dir != "/tmp/kv" || cfg.DBFile != "snap.db" {
		t.Fatalf("got dir=%q dbfile=%q", cfg.Dir, cfg.DBFile)
	}
	if cfg.RateLimit.CommandsPerSecond != 100 {
		t.Fatalf("got rate limit %v", cfg.RateLimit.CommandsPerSecond)
	}
	if cfg.Metrics.ShardCount != 8 || cfg.Metrics.Address != "127.0.0.1:9090" {
		t.Fatalf("got metrics %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("got logging %+v", cfg.Logging)
	}
}

// TestLoadAcceptsRealYAMLMarshalOutput checks the hand-rolled parser
// against output from a genuine YAML library rather than only
// hand-written fixtures, so a drift in indentation or quoting style
// between "YAML as this parser expects it" and "YAML as it's actually
// written" would show up here.
func TestLoadAcceptsRealYAMLMarshalOutput(t *testing.T) {
	doc := map[string]interface{}{
		"server": map[string]interface{}{
			"address": "0.0.0.0",
			"port":    6380,
		},
		"dir":        "/var/lib/kvflowd",
		"dbfilename": "dump.db",
		"rateLimit": map[string]interface{}{
			"commandsPerSecond": 50,
		},
		"metrics": map[string]interface{}{
			"address":    "",
			"shardCount": 16,
		},
		"logging": map[string]interface{}{
			"dir":   "logs",
			"level": "warn",
		},
	}
	// The hand-rolled parser only understands 2-space indentation, so
	// the encoder is pinned to that rather than yaml.v3's 4-space
	// default.
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	enc.Close()

	path := filepath.Join(t.TempDir(), "kvflowd.yaml")
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v\n--- fixture ---\n%s", err, buf.String())
	}
	if cfg.Server.Port != 6380 || cfg.Dir != "/var/lib/kvflowd" {
		t.Fatalf("got %+v", cfg)
	}
	if cfg.Metrics.ShardCount != 16 || cfg.Logging.Level != "warn" {
		t.Fatalf("got metrics=%+v logging=%+v", cfg.Metrics, cfg.Logging)
	}
}

func TestLoadRejectsSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvflowd.yaml")
	contents := "server:\n  address: 127.0.0.1\n  port: 7000\ntags:\n  - a\n  - b\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported YAML sequence")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
