package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidroman0O/firm-counter/internal/config"
	"github.com/davidroman0O/firm-counter/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "counter",
	Short: "A persistent counter with an auto-incrementer and a stream-driven twin",
	Long: `counter shows two counters driven by the same four buttons.

The first is mutated directly and persisted after every change. The second
is the fold of every click and tick it has seen since it was mounted. Reset
sends the first back to its initial value and the second to zero, so the two
drift apart.

Run without arguments to start the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Storage.Path = dbPath
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("config", configPath),
			zap.String("driver", cfg.Storage.Driver),
			zap.String("db", cfg.Storage.Path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCounter,
}

// showCmd prints the persisted count
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted count",
	Args:  cobra.NoArgs,
	RunE:  showCount,
}

// clearCmd forgets the persisted count
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the persisted count so the next run starts from the initial value",
	Args:  cobra.NoArgs,
	RunE:  clearCount,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "counter.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides storage.path)")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
