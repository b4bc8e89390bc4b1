// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the structured log instead of sending them.
type LogSender struct {
	from   string
	logger *slog.Logger
}

// NewLogSender constructs a [LogSender].
func NewLogSender(from string, logger *slog.Logger) *LogSender {
	return &LogSender{from: from, logger: logger}
}

// Send logs the full message, body included.
func (sender *LogSender) Send(context context.Context, recipient, subject, body string) error {
	message := Message{From: sender.from, Recipient: recipient, Subject: subject, Body: body}
	if err := message.validate(); err != nil {
		return err
	}

	sender.logger.InfoContext(context, "mail_logged",
		slog.String("from", message.From),
		slog.String("recipient", message.Recipient),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)

	return nil
}
