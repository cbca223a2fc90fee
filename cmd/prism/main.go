package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/edwenger/prism-data-viewer/pkg/common/config"
	"github.com/edwenger/prism-data-viewer/pkg/common/logger"
	"github.com/edwenger/prism-data-viewer/pkg/common/models"
	"github.com/edwenger/prism-data-viewer/pkg/normalizer"
	"github.com/edwenger/prism-data-viewer/pkg/store"
	"github.com/edwenger/prism-data-viewer/pkg/viewer"
)

func main() {
	logger.Init()
	cfg := config.Load()

	root := rootCommand(cfg)
	if err := root.Execute(); err != nil {
		logger.Log.WithError(err).Fatal("Run failed")
	}
}

func rootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "prism",
		Short:        "PRISM cohort data pipeline: normalize raw extracts and build household viewers",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory with the raw PRISM extracts")
	root.PersistentFlags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for cleaned per-site CSVs")
	root.PersistentFlags().StringVar(&cfg.ViewerDir, "viewer-dir", cfg.ViewerDir, "directory for generated HTML viewers")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.WithFields(logrus.Fields{
			"run_id":  uuid.New().String(),
			"command": cmd.Name(),
		}).Info("Starting PRISM pipeline run")
	}

	root.AddCommand(normalizeCommand(cfg), viewerCommand(cfg), runCommand(cfg))
	return root
}

func normalizeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Join the raw extracts and write one cleaned CSV per site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cfg)
		},
	}
}

func viewerCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "viewer [site...]",
		Short: "Build the interactive household viewer page for each site",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewers(cfg, args)
		},
	}
}

func runCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Normalize, then build every site viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runNormalize(cfg); err != nil {
				return err
			}
			return runViewers(cfg, nil)
		},
	}
}

func runNormalize(cfg *config.Config) error {
	catalog, err := normalizer.LoadCatalog(cfg.ColumnCatalogPath)
	if err != nil {
		return err
	}

	outputs, err := normalizer.New(catalog).Run(cfg.DataDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	if cfg.ArchiveDSN == "" {
		return nil
	}
	return archiveOutputs(cfg.ArchiveDSN, outputs)
}

func archiveOutputs(dsn string, outputs []*normalizer.Cleaned) error {
	archive, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctx := context.Background()
	runID := uuid.New().String()
	for _, cleaned := range outputs {
		records, err := cleaned.Records()
		if err != nil {
			return err
		}
		if err := archive.SaveBatch(ctx, runID, cleaned.Site, records); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"site":    cleaned.Site.Name,
			"records": len(records),
		}).Info("Archived cleaned records")
	}
	return nil
}

func runViewers(cfg *config.Config, names []string) error {
	rules, err := viewer.LoadTreatmentRules(cfg.TreatmentRulesPath)
	if err != nil {
		return err
	}
	builder := viewer.NewBuilder(rules)

	for _, site := range selectSites(names) {
		csvPath := filepath.Join(cfg.OutputDir, "prism_cleaned_"+site.Key()+".csv")
		outPath := filepath.Join(cfg.ViewerDir, site.Key()+".html")
		if err := builder.Build(site, csvPath, outPath); err != nil {
			return err
		}
	}
	return nil
}

// selectSites maps site name arguments (case-insensitive) onto the fixed
// site list; no arguments means all three sites. Unknown names abort.
func selectSites(names []string) []models.Site {
	sites := models.Sites()
	if len(names) == 0 {
		return sites
	}

	byKey := make(map[string]models.Site, len(sites))
	for _, s := range sites {
		byKey[s.Key()] = s
	}

	var selected []models.Site
	for _, name := range names {
		site, ok := byKey[strings.ToLower(name)]
		if !ok {
			logger.WithField("site", name).Fatal("Unknown site")
		}
		selected = append(selected, site)
	}
	return selected
}
