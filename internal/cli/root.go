// Package cli defines the cobra command tree for the bw CLI.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/scbrown/blockwright/internal/codegen"
	"github.com/scbrown/blockwright/internal/compile"
	"github.com/scbrown/blockwright/internal/config"
	"github.com/scbrown/blockwright/internal/knowledge"
	"github.com/scbrown/blockwright/internal/logger"
	"github.com/scbrown/blockwright/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPath        string
	jsonOutput    bool
	knowledgePath string
	patternsPath  string
	storeMode     string
	remoteURL     string
	defaultFormat string
	recordHistory = true

	log      = slog.New(slog.DiscardHandler)
	closeLog = func() error { return nil }
)

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".bw", "history.db")
}

// rootCmd is the top-level bw command.
var rootCmd = &cobra.Command{
	Use:   "bw",
	Short: "Blockwright - turn plain sentences into Scratch-style block programs",
	Long: `bw reads a short English description of what a sprite should do and
builds the matching block program. Programs are printed as readable text,
written as a PictoBlox project, or exported as a JSON block list.

Every generation is kept in a SQLite database at ~/.bw/history.db
(configurable via --db flag or bw config db_path) so you can review what
was asked and which requests were not understood. All output commands
support --json for machine-readable output.`,
	Example: `  # Print the blocks for a sentence
  bw generate when space key pressed jump

  # Write a PictoBlox project
  bw generate move right 20 steps and say hello --format pictoblox --out game.pbl

  # Start from a ready-made game
  bw template maze --level intermediate

  # Learn about the ideas behind the blocks
  bw explain loops --level intermediate

  # Review past requests
  bw history --since 7d
  bw history --unrecognized`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgErr := config.LoadFrom(configPath)
		if cfgErr != nil {
			cfg = &config.Config{}
		}
		applyConfig(cmd, cfg)

		l, closer, err := logger.Setup(logger.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			File:   cfg.LogFile,
			Writer: cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("set up logging: %w", err)
		}
		log, closeLog = l, closer
		if cfgErr != nil {
			logger.WithError(log, cfgErr).Warn("ignoring unreadable config", "path", configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "path to SQLite history database")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&knowledgePath, "knowledge", "", "block knowledge base file (default: built-in)")
	rootCmd.PersistentFlags().StringVar(&patternsPath, "patterns", "", "pattern library file (default: built-in)")
}

// applyConfig fills in settings the user did not pass as flags.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if cfg.DBPath != "" && !flags.Changed("db") {
		dbPath = cfg.DBPath
	}
	if cfg.KnowledgePath != "" && !flags.Changed("knowledge") {
		knowledgePath = cfg.KnowledgePath
	}
	if cfg.PatternsPath != "" && !flags.Changed("patterns") {
		patternsPath = cfg.PatternsPath
	}
	defaultFormat = cfg.DefaultFormat
	storeMode = cfg.StoreMode
	remoteURL = cfg.RemoteURL
	recordHistory = cfg.Recording()
}

// openStore returns a store.Store based on the current configuration.
// When store_mode is "remote", it returns a RemoteStore pointing at remote_url.
// Otherwise it opens the local SQLite database.
func openStore() (store.Store, error) {
	if storeMode == "remote" {
		if remoteURL == "" {
			return nil, fmt.Errorf("store_mode is \"remote\" but remote_url is not set; use: bw config remote_url <url>")
		}
		return store.NewRemote(remoteURL), nil
	}
	return store.New(dbPath)
}

// newCompiler loads the knowledge base and pattern library named by the
// flags or config, falling back to the built-in ones.
func newCompiler() *compile.Compiler {
	kb := knowledge.Load(knowledgePath, log)
	patterns := knowledge.LoadPatterns(patternsPath, log)
	return compile.New(codegen.New(kb, patterns, log), log)
}

// record stores res in the history. Failures are logged, never fatal.
func record(ctx context.Context, res *compile.Result) {
	s, err := openStore()
	if err != nil {
		logger.WithError(log, err).Warn("history unavailable")
		return
	}
	defer s.Close()
	if _, err := s.RecordGeneration(ctx, res.Generation()); err != nil {
		logger.WithError(log, err).Warn("recording generation failed")
	}
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command and closes the log file, whether or not the
// command succeeded.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeLog(); cerr != nil && err == nil {
		err = fmt.Errorf("close log: %w", cerr)
	}
	log, closeLog = slog.New(slog.DiscardHandler), func() error { return nil }
	return err
}
