package config

import (
	"os"
)

type Config struct {
	// Directories
	DataDir   string // raw PRISM extracts
	OutputDir string // cleaned per-site CSVs
	ViewerDir string // generated HTML pages

	// Optional yaml overrides
	ColumnCatalogPath  string
	TreatmentRulesPath string

	// Optional cleaned-record archive. Either a postgres DSN
	// ("postgres://..." or "host=...") or a path to a sqlite file.
	ArchiveDSN string
}

func Load() *Config {
	return &Config{
		DataDir:   getEnv("DATA_DIR", "data"),
		OutputDir: getEnv("OUTPUT_DIR", "data"),
		ViewerDir: getEnv("VIEWER_DIR", "docs"),

		ColumnCatalogPath:  getEnv("COLUMN_CATALOG", ""),
		TreatmentRulesPath: getEnv("TREATMENT_RULES", ""),

		ArchiveDSN: getEnv("ARCHIVE_DSN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
