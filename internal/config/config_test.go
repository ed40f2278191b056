package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHOPLIST_BACKEND", "")
	t.Setenv("SHOPLIST_CODE_LENGTH", "")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	want.Dir = dir
	if cfg != want {
		t.Fatalf("got %+v\nwant %+v", cfg, want)
	}
	if cfg.ListsDir() != filepath.Join(dir, "lists") {
		t.Fatalf("unexpected lists dir %q", cfg.ListsDir())
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yml := strings.Join([]string{
		"backend: sqlite",
		"code_length: 8",
		"base_url: https://lists.example/",
		"qr_size: 300",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SHOPLIST_CODE_LENGTH", "6")
	t.Setenv("SHOPLIST_BACKEND", "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.BaseURL != "https://lists.example/" || cfg.QRSize != 300 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.CodeLength != 6 {
		t.Fatalf("env should override file, got %d", cfg.CodeLength)
	}
}

func TestLoad_DirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHOPLIST_DIR", dir)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dir != dir {
		t.Fatalf("expected dir %q, got %q", dir, cfg.Dir)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"SHOPLIST_BACKEND":     "redis",
		"SHOPLIST_CODE_LENGTH": "two",
		"SHOPLIST_BASE_URL":    "ftp://nope",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(t.TempDir()); err == nil {
				t.Fatalf("expected error for %s=%s", k, v)
			}
		})
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("backend: [oops"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected yaml parse error")
	}
}
