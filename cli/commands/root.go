package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/version"
	"github.com/satishbabariya/multilingual-go/internal/config"
	"github.com/satishbabariya/multilingual-go/internal/debug"
)

var (
	cfgFile    string
	schemaFlag string
	debugFlag  bool

	// cfg is loaded before any command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mlquery",
	Short: "Inspect translation-aware queries over multilingual models",
	Long: `mlquery compiles filter expressions against a multilingual schema file
and shows the SQL, the per-language joins and suggested indexes.

Configuration is read from .mlquery.yaml (working directory, home directory
or ~/.config/mlquery), MLQUERY_* environment variables and .env files.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("schema") {
			loaded.SchemaPath = schemaFlag
		}
		debug.Init(loaded.Debug || debugFlag)
		debug.Debug("config loaded", "file", loaded.File, "schema", loaded.SchemaPath)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .mlquery.yaml)")
	rootCmd.PersistentFlags().StringVarP(&schemaFlag, "schema", "s", "schema.yaml", "Path to schema file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// Execute is the main entry point for the CLI
func Execute() error {
	return rootCmd.Execute()
}
