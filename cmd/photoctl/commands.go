package main

import (
	"fmt"
	"time"

	"github.com/rijalsawan/photography-sub000/internal/middleware"
	"github.com/rijalsawan/photography-sub000/internal/models"
	"github.com/rijalsawan/photography-sub000/internal/services"
	"github.com/rijalsawan/photography-sub000/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recountPhotoID string

var (
	tokenUserID string
	tokenTTL    time.Duration
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		if err := db.Postgres.WithContext(cmd.Context()).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recompute photo like and comment counters from their rows",
	Long: `recount rebuilds the denormalized likeCount and commentCount of one photo
(--photo) or of every photo, reporting the ones that had drifted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		counters := services.NewCounterService(db.Postgres, log)
		out := cmd.OutOrStdout()

		if recountPhotoID != "" {
			c, err := counters.Recount(cmd.Context(), recountPhotoID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "photo %s: likes=%d comments=%d changed=%t\n", c.PhotoID, c.LikeCount, c.CommentCount, c.Changed)
			return nil
		}

		changed, err := counters.RecountAll(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("recount finished", zap.Int("changed", changed))
		fmt.Fprintf(out, "%d photo(s) corrected\n", changed)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a development token for AUTH_PROVIDER=jwt",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserID == "" {
			return fmt.Errorf("--user is required")
		}
		verifier, err := middleware.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return err
		}
		token, err := verifier.SignToken(tokenUserID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	recountCmd.Flags().StringVar(&recountPhotoID, "photo", "", "Only recount this photo id")

	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "Account id to put in the token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}
