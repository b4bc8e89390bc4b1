// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yamdb/internal/platform/mail"
	"github.com/taibuivan/yamdb/internal/platform/postgres"
	redisstore "github.com/taibuivan/yamdb/internal/platform/redis"
	"github.com/taibuivan/yamdb/internal/users/auth"
)

var relayCmd = &cobra.Command{
	Use:   "mail-relay",
	Short: "Consume the mail queue and deliver each message over SMTP",
	Long: `Consume the mail queue and deliver each message over SMTP.

A message is tried MAIL_MAX_ATTEMPTS times. When the relay gives up, the
recipient's pending confirmation code is deleted so signing up again
issues a new one, and the message moves to the dead-letter queue.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer rdb.Close()

		client, err := mail.DialQueue(cfg.Mail.AMQPURL, cfg.Mail.Queue, cfg.Mail.MaxAttempts)
		if err != nil {
			return err
		}
		defer client.Close()

		releaser := auth.NewCodeReleaser(auth.NewUserRepository(pool), auth.NewConfirmationCodeRepository(rdb), log)
		policy := mail.RelayPolicy{MaxAttempts: cfg.Mail.MaxAttempts, OnUndeliverable: releaser.Release}

		smtpSender := mail.NewSMTPSender(mail.SMTPConfigFrom(cfg.Mail), log)
		return mail.NewRelay(client, smtpSender, policy, log).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
}
