// Package main implements the intakegrid-import binary: a one-shot import of
// an intake template JSON file into the grid catalog.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/intakegrid/intakegrid/internal/archive"
	"github.com/intakegrid/intakegrid/internal/config"
	"github.com/intakegrid/intakegrid/internal/grid"
	"github.com/intakegrid/intakegrid/internal/importer"
	"github.com/intakegrid/intakegrid/internal/storage"
)

func main() {
	var (
		configFile string
		dataDir    string
		forceNew   bool
		noArchive  bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for all data files")
	flag.BoolVar(&forceNew, "force-new-version", false, "Publish under a new versioned name even if the base name is free")
	flag.BoolVar(&noArchive, "no-archive", false, "Skip the snapshot upload")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: intakegrid-import [options] <template.json>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	jsonText, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read template file: %v", err)
	}

	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, dataDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	store, err := grid.NewStore(cfg.Import.GridDBPath)
	if err != nil {
		log.Fatalf("Failed to open grid store: %v", err)
	}
	defer store.Close()

	var archiver *archive.Archiver
	if cfg.Archive.Enabled && !noArchive {
		objectStore, err := newObjectStorage(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archiver = archive.NewArchiver(objectStore, cfg.Archive.WorkDir)
	}

	imp := importer.New(store, archiver)
	result := imp.ProcessIntakeJSON(context.Background(), string(jsonText), forceNew)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}

func loadConfig(configFile, dataDir string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	switch cfg.Storage.Type {
	case "local":
		return storage.NewLocalStorage(cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if cfg.Storage.S3.Region != "" {
			s3Cfg.Region = cfg.Storage.S3.Region
		}
		if cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = cfg.Storage.S3.Endpoint
		}
		return storage.NewS3Storage(context.Background(), cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
