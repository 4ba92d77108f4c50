package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheetgrid.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(write(t, "rows: 50\ncol_width: 10\nlog_file: /tmp/g.log\nautosave: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Rows = 50
	want.ColWidth = 10
	want.LogFile = "/tmp/g.log"
	want.Autosave = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.yaml"), "read config"},
		{"malformed", write(t, "rows: [1, 2"), "parse config"},
		{"invalid", write(t, "rows: 0\ncol_width: 2\n"), "col_width must be at least 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
