// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command yamdbctl is the operator CLI for YaMDb.
//
// It reads the same environment as the API server and offers:
//
//	yamdbctl migrate up|down       apply or roll back schema migrations
//	yamdbctl promote <username>    set a role and the superuser flag
//	yamdbctl mail-relay            deliver queued mail through SMTP
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/internal/platform/constants"
)

var (
	verbose bool
	log     *slog.Logger
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "yamdbctl",
	Short:         "Operator tooling for the YaMDb API",
	Version:       constants.AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
			With(slog.String("app", "yamdbctl"))

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
