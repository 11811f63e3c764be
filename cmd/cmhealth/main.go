package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"cmhealth/config"
	"cmhealth/internal/activity"
	"cmhealth/internal/agentstatus"
	"cmhealth/internal/ingest"
	"cmhealth/internal/logger"
	"cmhealth/internal/output/narrative"
	"cmhealth/internal/output/workbook"
	"cmhealth/internal/pipeline"
	"cmhealth/internal/registry"
	"cmhealth/internal/schema"
	"cmhealth/pkg/models"
)

const version = "1.0.0"

var configArg string

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("cmhealth.yml"); err == nil {
		return "cmhealth.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "cmhealth.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func loadConfig() (*config.Config, error) {
	path := findConfigFile(configArg)
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	config.ApplyDefaults(cfg)
	return cfg, nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	c := cfg.CMHealth
	return pipeline.Options{
		StatusVocab: agentstatus.Vocabulary{
			Active:   c.Status.Active,
			Inactive: c.Status.Inactive,
		},
		Activity: activity.Config{
			Monitored: c.Activity.Monitored,
			Success:   c.Status.Success,
		},
		Workers: c.Pipeline.Workers,
	}
}

func newInitCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the workspace folder structure",
		Long: "Creates the workspace folders the input spreadsheets are dropped into.\n" +
			"When the central inventory is already present, per-collector subfolders\n" +
			"are created as well, so init can be run again after placing the inventory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.CMHealth.Logging.Enabled, cfg.CMHealth.Logging.Level, cfg.CMHealth.Logging.File, cfg.CMHealth.Logging.Console); err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			ws := ingest.NewWorkspace(afero.NewOsFs(), cfg.CMHealth.Workspace.Root)
			if clean {
				if err := ws.CleanPreviousRun(); err != nil {
					return err
				}
				fmt.Println("Removed files from previous runs.")
			}
			if err := ws.Init(); err != nil {
				return err
			}

			collectors, err := inventoryCollectors(ws)
			if err != nil {
				return err
			}
			if len(collectors) > 0 {
				if err := ws.InitCollectors(collectors); err != nil {
					return err
				}
				fmt.Printf("Workspace ready at %s (%d collector folders).\n", ws.Root(), len(collectors))
				return nil
			}

			fmt.Printf("Workspace ready at %s. Place the inventory under %q and run init again.\n",
				ws.Root(), ingest.FolderCM)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "remove files left over from previous runs first")
	return cmd
}

// inventoryCollectors reads whatever inventory is already present and returns
// the collector display names, used to pre-create their log folders.
func inventoryCollectors(ws *ingest.Workspace) ([]string, error) {
	paths, err := ws.InventoryFiles()
	if err != nil {
		return nil, err
	}

	var tables []*models.Table
	for _, path := range paths {
		tbl, err := ingest.ReadTable(ws.FS(), path, models.KindInventory)
		if err != nil {
			logger.Warnf("Skipping unreadable inventory file %s: %v", path, err)
			continue
		}
		if _, err := schema.Validate(tbl); err != nil {
			logger.Warnf("Skipping inventory file %s: %v", path, err)
			continue
		}
		tables = append(tables, tbl)
	}

	reg, _ := registry.Build(tables)
	var names []string
	for _, node := range reg.Collectors() {
		names = append(names, node.DisplayName)
	}
	return names, nil
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process the workspace and write the health report artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.CMHealth.Logging.Enabled, cfg.CMHealth.Logging.Level, cfg.CMHealth.Logging.File, cfg.CMHealth.Logging.Console); err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer logger.Sync()

			ws := ingest.NewWorkspace(afero.NewOsFs(), cfg.CMHealth.Workspace.Root)
			res, err := pipeline.Run(ws, pipelineOptions(cfg))
			if err != nil {
				return err
			}

			if err := ws.EnsureOutputDir(); err != nil {
				return err
			}
			workbookPath := ws.OutputPath(cfg.CMHealth.Output.Workbook)
			if err := workbook.Write(ws.FS(), workbookPath, res.Summary, res.Warnings); err != nil {
				return err
			}
			narrativePath := ws.OutputPath(cfg.CMHealth.Output.Narrative)
			report := narrative.Report{
				RunID:       res.RunID,
				GeneratedAt: res.GeneratedAt,
				Summary:     res.Summary,
				Warnings:    res.Warnings,
			}
			if err := narrative.Write(ws.FS(), narrativePath, report); err != nil {
				return err
			}

			s := res.Summary
			fmt.Printf("nodes=%d collectors=%d agents=%d active=%d inactive=%d failures=%d\n",
				s.NodeCount, s.CollectorCount, s.Agents.Total, s.Agents.Active, s.Agents.Inactive, len(s.Failures))
			fmt.Printf("Workbook: %s\n", workbookPath)
			fmt.Printf("Report:   %s\n", narrativePath)
			if len(res.Warnings) > 0 {
				fmt.Printf("%d warnings recorded; see the report for details.\n", len(res.Warnings))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cmhealth version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cmhealth %s\n", version)
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "cmhealth",
		Short:         "Central Manager health check over operational spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configArg, "config", "c", "", "path to cmhealth.yml")
	root.AddCommand(newInitCmd(), newRunCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cmhealth: %v\n", err)
		os.Exit(1)
	}
}
