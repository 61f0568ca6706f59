package cli

import (
	"fmt"
	"io"

	"github.com/scbrown/blockwright/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or modify configuration",
	Long: `View or change bw configuration stored in ~/.bw/config.toml.

With no arguments, shows all configuration settings.
With one argument, shows the value of that key.
With two arguments, sets the key to the given value. An empty value clears
the key.

Settings:
  db_path         Path to the SQLite history database
  knowledge_path  Block knowledge base file (YAML or JSON)
  patterns_path   Pattern library file (YAML or JSON)
  default_format  Default generate format: text, pictoblox or blocks
  store_mode      "local" (default) or "remote"
  remote_url      Base URL of a bw serve instance for remote mode
  log_level       debug, info, warn or error
  log_format      text or json
  log_file        Also append JSON log records to this file
  record_history  true (default) or false`,
	Example: `  bw config
  bw config db_path
  bw config db_path /custom/path/history.db
  bw config default_format pictoblox
  bw config store_mode remote
  bw config remote_url http://localhost:7274
  bw config record_history false`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		w := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return showConfig(w, cfg)
		case 1:
			return getConfig(w, cfg, args[0])
		default:
			return setConfig(w, cfg, args[0], args[1])
		}
	},
}

// configPath is the path to the config file, settable for testing.
var configPath = config.Path()

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(w io.Writer, cfg *config.Config) error {
	if jsonOutput {
		return printJSON(w, cfg)
	}

	tbl := NewTable(w, "KEY", "VALUE")
	for _, key := range config.ValidKeys() {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		tbl.Row(key, val)
	}
	return tbl.Flush()
}

func getConfig(w io.Writer, cfg *config.Config, key string) error {
	val, err := cfg.Get(key)
	if err != nil {
		return err
	}
	if val == "" {
		return nil
	}
	fmt.Fprintln(w, val)
	return nil
}

func setConfig(w io.Writer, cfg *config.Config, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s = %s\n", key, value)
	return nil
}
