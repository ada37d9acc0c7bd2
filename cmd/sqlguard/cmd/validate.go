package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wmenjoy/sql-tools/pkg/logging"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard"
	"github.com/wmenjoy/sql-tools/pkg/sqlguard/checkers"
)

var (
	sqlFlag       string
	threadKeyFlag string
	strictFlag    bool
	logLevelFlag  string
)

func init() {
	validateCmd.Flags().StringVar(&sqlFlag, "sql", "", "SQL statement to validate (reads stdin if omitted)")
	validateCmd.Flags().StringVar(&threadKeyFlag, "thread-key", "cli", "deduplication key for this invocation")
	validateCmd.Flags().BoolVar(&strictFlag, "strict", false, "fail instead of demoting unparseable SQL to a LOW violation")
	validateCmd.Flags().StringVar(&logLevelFlag, "log-level", "warn", "operational log level: debug, info, warn, error")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate one SQL statement against the checker catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := sqlFlag
		if sql == "" {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading SQL from stdin: %w", err)
			}
			sql = string(b)
		}

		catalogCfg := sqlguard.DefaultCatalogConfig()
		if v, loaded, err := loadViper(); err != nil {
			return err
		} else if loaded {
			if err := v.Unmarshal(&catalogCfg); err != nil {
				return fmt.Errorf("decoding policy file: %w", err)
			}
		}
		catalogCfg.Global.StrictParse = catalogCfg.Global.StrictParse || strictFlag

		if err := catalogCfg.Validate(); err != nil {
			return err
		}

		logger := logging.New(logging.Config{Level: logLevelFlag, Format: "text", Output: "stderr"})

		v, err := sqlguard.New(catalogCfg.Global, checkers.Default(catalogCfg), sqlguard.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("constructing validator: %w", err)
		}

		result, err := v.Validate(context.Background(), sqlguard.ValidateRequest{
			RawSQL:      sql,
			StatementID: "cli",
			ThreadKey:   threadKeyFlag,
		})
		if err != nil {
			return err
		}

		dispatcher := sqlguard.NewStrategyDispatcher(sqlguard.DefaultStrategyConfig())
		outcome := dispatcher.Dispatch(result)

		fmt.Printf("risk level: %s\n", result.RiskLevel())
		fmt.Printf("outcome:    %s\n", outcome)
		for _, vio := range result.Violations() {
			fmt.Printf("  [%s] %s: %s\n", vio.RiskLevel, vio.CheckerID, vio.Message)
			if vio.Suggestion != "" {
				fmt.Printf("      suggestion: %s\n", vio.Suggestion)
			}
		}

		if outcome == sqlguard.FAIL {
			return fmt.Errorf("validation failed with risk level %s", result.RiskLevel())
		}
		return nil
	},
}
