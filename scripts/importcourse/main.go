package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fstop/cms"
	"fstop/config"
	"fstop/importer"
	"fstop/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "importcourse",
		Short:        "Import a folder of course modules and lessons into the content store",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML file overriding section headers, course and instructor defaults")

	root.AddCommand(newScanCmd(&configPath), newRunCmd(&configPath), newCoursesCmd())
	return root
}

func newScanCmd(configPath *string) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the modules and lessons that would be imported",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := importer.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			st, err := importer.Scan(path, cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "course directory")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newRunCmd(configPath *string) *cobra.Command {
	var (
		path   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create instructor, course, modules and lessons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			icfg, err := importer.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dry-run") {
				icfg.Options.DryRun = dryRun
			}

			cfg, err := config.Load(config.ProfileImport)
			if err != nil {
				return err
			}
			log, err := utils.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := importer.New(icfg, cms.NewClient(cfg.Sanity), log).Run(ctx, path)
			if err != nil {
				log.Error("import failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "course %s: %d modules, %d lessons, %d skipped\n",
				rep.CourseID, rep.Modules, rep.Lessons, len(rep.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "course directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log documents instead of creating them")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List courses in the content store with their module and lesson counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.ProfileImport)
			if err != nil {
				return err
			}
			summaries, err := cms.NewClient(cfg.Sanity).CourseSummaries(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "no courses found")
				return nil
			}
			for i, s := range summaries {
				fmt.Fprintf(out, "%d. %s\n   id: %s\n   slug: %s\n   modules: %d, lessons: %d\n   created: %s\n",
					i+1, s.Title, s.ID, s.Slug, s.ModuleCount, s.LessonCount, s.CreatedAt.Format(time.RFC1123))
			}
			if len(summaries) > 1 {
				fmt.Fprintf(out, "\n%d courses found; remove incomplete duplicates in the studio\n", len(summaries))
			}
			return nil
		},
	}
}
