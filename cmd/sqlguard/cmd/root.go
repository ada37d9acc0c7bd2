package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sqlguard",
	Short: "SQL safety validation core — demonstration CLI",
	Long: `sqlguard loads a checker policy file and validates SQL statements
against it, printing the violations the core catalog finds.

This binary is a thin demonstration host around pkg/sqlguard; it is not
an interception adapter for any specific ORM, connection pool, or driver.

Examples:
  # Validate a single statement
  sqlguard validate --sql "DELETE FROM users"

  # Validate with a custom policy file
  sqlguard validate --config policy.yaml --sql "SELECT * FROM users"

  # Validate SQL piped on stdin
  echo "SELECT * FROM users" | sqlguard validate
`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "policy file (YAML); defaults to built-in catalog defaults")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadViper reads cfgFile (if set) into a fresh viper instance. Callers
// Unmarshal the result into sqlguard.CatalogConfig themselves so a
// missing --config flag cleanly falls back to DefaultCatalogConfig.
func loadViper() (*viper.Viper, bool, error) {
	if cfgFile == "" {
		return nil, false, nil
	}
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, false, fmt.Errorf("reading config file %s: %w", cfgFile, err)
	}
	return v, true, nil
}
