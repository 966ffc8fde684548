package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default HTTP addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Storage.Type != "local" {
		t.Errorf("default storage type = %q", cfg.Storage.Type)
	}
	if !cfg.Archive.Enabled {
		t.Error("archive should be enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Resolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data/intakegrid"
	cfg.Resolve()

	if cfg.Import.GridDBPath != filepath.Join("/data/intakegrid", "grids.db") {
		t.Errorf("grid db path = %q", cfg.Import.GridDBPath)
	}
	if cfg.Storage.Path != filepath.Join("/data/intakegrid", "storage") {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if cfg.Archive.WorkDir != filepath.Join("/data/intakegrid", "staging") {
		t.Errorf("archive work dir = %q", cfg.Archive.WorkDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid local", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: true},
		{name: "bad storage type", mutate: func(c *Config) { c.Storage.Type = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{
			name: "s3 with bucket",
			mutate: func(c *Config) {
				c.Storage.Type = "s3"
				c.Storage.S3.Bucket = "snapshots"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INTAKEGRID_DATA_DIR", "/env/data")
	t.Setenv("INTAKEGRID_HTTP_ADDR", ":9999")
	t.Setenv("INTAKEGRID_STORAGE_TYPE", "s3")
	t.Setenv("INTAKEGRID_S3_BUCKET", "env-bucket")
	t.Setenv("INTAKEGRID_ARCHIVE_ENABLED", "false")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.DataDir != "/env/data" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Storage.Type != "s3" || cfg.Storage.S3.Bucket != "env-bucket" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Archive.Enabled {
		t.Error("archive should be disabled via env")
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	content := `
data_dir: /tmp/intakegrid
http:
  addr: ":7070"
storage:
  type: s3
  s3:
    bucket: grid-snapshots
    region: eu-west-1
archive:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.DataDir != "/tmp/intakegrid" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Storage.S3.Bucket != "grid-snapshots" || cfg.Storage.S3.Region != "eu-west-1" {
		t.Errorf("s3 = %+v", cfg.Storage.S3)
	}
	if cfg.Archive.Enabled {
		t.Error("archive should be disabled by file")
	}
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("unsupported extension should fail")
	}
}
