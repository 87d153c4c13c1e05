package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogFile != "colony4b.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.Seed != 1 {
		t.Errorf("Seed = %d", cfg.Seed)
	}
	if cfg.AllowDebug {
		t.Error("debug should be off by default")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colony4b.yaml")
	if err := os.WriteFile(path, []byte("seed: 42\nallow_debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 42 || !cfg.AllowDebug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogFile != "colony4b.log" {
		t.Errorf("default LogFile lost: %q", cfg.LogFile)
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colony4b.yaml")
	body := `
log_file: /tmp/session.log
content_dir: ./content
seed: 99
plain: true
script: cmds.txt
allow_debug: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		LogFile:    "/tmp/session.log",
		ContentDir: "./content",
		Seed:       99,
		Plain:      true,
		Script:     "cmds.txt",
		AllowDebug: true,
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("seed: [not a number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
