// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"fmt"
	"log/slog"

	"github.com/taibuivan/yamdb/internal/platform/config"
)

// SMTPConfigFrom maps the MAIL_* settings onto an [SMTPConfig].
func SMTPConfigFrom(cfg config.MailConfig) SMTPConfig {
	return SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.From,
		Timeout:  cfg.SMTPTimeout,
	}
}

/*
NewSender builds the [Sender] selected by MAIL_BACKEND.

Returns:
  - Sender: The configured backend
  - func() error: Releases broker resources. Never nil.
  - error: Broker connection failures or an unknown backend
*/
func NewSender(cfg config.MailConfig, logger *slog.Logger) (Sender, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.MailBackendSMTP:
		return NewSMTPSender(SMTPConfigFrom(cfg), logger), noop, nil

	case config.MailBackendQueue:
		client, err := DialQueue(cfg.AMQPURL, cfg.Queue, cfg.MaxAttempts)
		if err != nil {
			return nil, noop, err
		}
		return NewQueueSender(client, cfg.From, logger), client.Close, nil

	case config.MailBackendLog:
		return NewLogSender(cfg.From, logger), noop, nil
	}

	return nil, noop, fmt.Errorf("mail: unknown backend %q", cfg.Backend)
}
