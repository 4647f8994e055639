// internal/cli/root.go
//
// Root command for the arena CLI. Subcommands evaluate solvers against
// puzzle catalogs and validate catalog files without a running server.

package cli

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	logLevel    string
	puzzlesFile string
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Bracket puzzle arena for automated solvers",
	Long: `arena runs bracket-substitution puzzles against automated solvers and
scores the results. Puzzles come from the embedded catalog or a JSON file.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		lvl, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(lvl)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "zerolog level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&puzzlesFile, "puzzles", "", "path to a puzzle catalog JSON file (default: embedded catalog)")
}

