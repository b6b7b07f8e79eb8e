package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "http-probe",
		"version": "1.2.0",
		"description": "Probes HTTP traffic",
		"author": "flowscope",
		"components": [
			{"kind": "analyzer", "name": "http-probe"},
			{"kind": "writer", "name": "probe-log"}
		]
	}`)

	m, err := LoadManifestFromDir(dir)
	if err != nil {
		t.Fatalf("LoadManifestFromDir() error: %v", err)
	}
	if m.Name != "http-probe" || m.Version != "1.2.0" {
		t.Errorf("manifest = %s, want http-probe v1.2.0", m)
	}
	if m.Main != "init.lua" {
		t.Errorf("Main = %q, want default init.lua", m.Main)
	}
	if m.MainPath() != filepath.Join(dir, "init.lua") {
		t.Errorf("MainPath() = %q", m.MainPath())
	}
	if len(m.Components) != 2 {
		t.Errorf("Components has %d entries, want 2", len(m.Components))
	}
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{
			name:    "missing name",
			json:    `{"version": "1.0.0"}`,
			wantErr: ErrMissingName,
		},
		{
			name:    "invalid name",
			json:    `{"name": "Bad_Name", "version": "1.0.0"}`,
			wantErr: ErrInvalidName,
		},
		{
			name:    "invalid version",
			json:    `{"name": "ok", "version": "not-semver"}`,
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "main not lua",
			json:    `{"name": "ok", "version": "1.0.0", "main": "init.py"}`,
			wantErr: ErrInvalidMain,
		},
		{
			name:    "unknown component kind",
			json:    `{"name": "ok", "version": "1.0.0", "components": [{"kind": "widget", "name": "x"}]}`,
			wantErr: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.json)
			_, err := LoadManifestFromDir(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifestVersionDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"name": "bare"}`)

	m, err := LoadManifestFromDir(dir)
	if err != nil {
		t.Fatalf("LoadManifestFromDir() error: %v", err)
	}
	if m.Version != "0.0.0" {
		t.Errorf("Version = %q, want default 0.0.0", m.Version)
	}
}

func TestIsBundle(t *testing.T) {
	dir := t.TempDir()
	if IsBundle(dir) {
		t.Error("IsBundle true for a directory without a manifest")
	}
	writeManifest(t, dir, `{"name": "x", "version": "1.0.0"}`)
	if !IsBundle(dir) {
		t.Error("IsBundle false for a directory with a manifest")
	}
}
