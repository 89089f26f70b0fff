// Package cli assembles the engine's config, registry, and manifest
// layers into a cobra command tree: run, resume, and graph.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"scriptweaver/internal/config"
	"scriptweaver/internal/core"
	"scriptweaver/internal/graphexport"
	"scriptweaver/internal/manifest"
)

// PipelineBuilder constructs a fresh task graph inside reg and returns the
// unit that should be treated as the graph's root — the node run and
// graph export start walking from.
type PipelineBuilder func(reg *core.Registry) (core.Unit, error)

// App wires a concrete pipeline and its manifest class resolver into the
// command tree. Build is invoked fresh for "run" and "graph" (which start
// from nothing); "resume" instead reconstructs the graph from a saved
// manifest via Resolver, never calling Build at all.
type App struct {
	Build    PipelineBuilder
	Resolver manifest.ClassResolver
}

// flags are the settings every subcommand accepts as overrides on top of
// config.Load's file-and-environment result.
type flags struct {
	workingDir    string
	manifestPath  string
	logLevel      string
	skipChecksums bool
}

// Command builds the root cobra.Command for this App.
func (a *App) Command() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "scriptweaver",
		Short: "Run an incremental, content-hash-cached task graph",
	}
	root.PersistentFlags().StringVar(&f.workingDir, "working-dir", "", "root directory for per-task working directories (default: a fresh temp dir)")
	root.PersistentFlags().StringVar(&f.manifestPath, "manifest", "", "manifest file path (default: from config)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn, or error")
	root.PersistentFlags().BoolVar(&f.skipChecksums, "skip-checksums", false, "treat every file input as unchanged")

	root.AddCommand(a.runCmd(f), a.resumeCmd(f), a.graphCmd(f))
	return root
}

func (a *App) resolveConfig(f *flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f.workingDir != "" {
		cfg.WorkingDir = f.workingDir
	}
	if f.manifestPath != "" {
		cfg.ManifestPath = f.manifestPath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.skipChecksums {
		cfg.SkipChecksums = true
	}
	return cfg, nil
}

func (a *App) runCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build the pipeline from scratch and run it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.resolveConfig(f)
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			root, err := a.Build(reg)
			if err != nil {
				return fmt.Errorf("building pipeline: %w", err)
			}
			if err := root.Run(cmd.Context()); err != nil {
				return fmt.Errorf("running pipeline: %w", err)
			}
			if err := saveManifest(cfg, reg); err != nil {
				return err
			}
			return reportManifestSaved(cmd, cfg.ManifestPath)
		},
	}
}

func (a *App) resumeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Reconstruct the pipeline from a saved manifest and rerun only what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.resolveConfig(f)
			if err != nil {
				return err
			}
			in, err := os.Open(cfg.ManifestPath)
			if err != nil {
				return fmt.Errorf("opening manifest %q: %w", cfg.ManifestPath, err)
			}
			defer in.Close()

			reg, err := manifest.Load(in, a.Resolver)
			if err != nil {
				return fmt.Errorf("loading manifest: %w", err)
			}
			root := reg.RootNode()
			if root == nil {
				return fmt.Errorf("manifest %q names no root node", cfg.ManifestPath)
			}
			if err := root.Run(cmd.Context()); err != nil {
				return fmt.Errorf("running pipeline: %w", err)
			}
			if err := saveManifest(cfg, reg); err != nil {
				return err
			}
			return reportManifestSaved(cmd, cfg.ManifestPath)
		},
	}
}

func (a *App) graphCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the pipeline's dependency graph as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.resolveConfig(f)
			if err != nil {
				return err
			}
			reg, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			root, err := a.Build(reg)
			if err != nil {
				return fmt.Errorf("building pipeline: %w", err)
			}
			return graphexport.WriteDOT(cmd.OutOrStdout(), root)
		},
	}
}

func newRegistry(cfg *config.Config) (*core.Registry, error) {
	return core.NewRegistry(core.Options{
		WorkingDir:    cfg.WorkingDir,
		SkipChecksums: cfg.SkipChecksums,
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})),
	})
}

func saveManifest(cfg *config.Config, reg *core.Registry) error {
	if err := manifest.SaveFile(cfg.ManifestPath, reg, int(cfg.SlogLevel())); err != nil {
		return fmt.Errorf("saving manifest %q: %w", cfg.ManifestPath, err)
	}
	return nil
}

// reportManifestSaved prints a one-line, human-readable confirmation of the
// manifest write, sizing it the way a person reads file sizes rather than in
// raw bytes.
func reportManifestSaved(cmd *cobra.Command, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("statting manifest %q: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	return nil
}
