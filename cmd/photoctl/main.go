package main

import (
	"fmt"
	"os"

	"github.com/rijalsawan/photography-sub000/pkg/config"
	"github.com/rijalsawan/photography-sub000/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "photoctl",
	Short: "photoctl - maintenance tasks for the photography API",
	Long: `photoctl runs one-off maintenance against the photography API database:
schema migration, counter repair and development tokens.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.New(cfg.LogLevel, cfg.LogFile, cfg.Env)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recountCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
