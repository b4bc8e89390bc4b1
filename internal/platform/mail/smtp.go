// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// DefaultSMTPTimeout bounds dialing and each SMTP command when SMTPConfig.Timeout is unset.
const DefaultSMTPTimeout = 10 * time.Second

// SMTPConfig holds the relay coordinates.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPSender delivers mail synchronously through an SMTP relay.
type SMTPSender struct {
	config  SMTPConfig
	logger  *slog.Logger
	deliver func(ctx context.Context, msg *gomail.Msg) error
}

// NewSMTPSender constructs an [SMTPSender].
func NewSMTPSender(config SMTPConfig, logger *slog.Logger) *SMTPSender {
	if config.Timeout <= 0 {
		config.Timeout = DefaultSMTPTimeout
	}

	sender := &SMTPSender{config: config, logger: logger}
	sender.deliver = sender.dialAndSend
	return sender
}

/*
Send delivers one plain-text message.

Description: Dialing and the SMTP exchange stop when the context is done
or the configured timeout passes. A 5xx reply to MAIL FROM, RCPT TO or the
end of DATA is returned as a [PermanentError].

Parameters:
  - context: context.Context
  - recipient: string
  - subject: string
  - body: string

Returns:
  - error: Relay refusal or connectivity errors
*/
func (sender *SMTPSender) Send(context context.Context, recipient, subject, body string) error {
	message := Message{From: sender.config.From, Recipient: recipient, Subject: subject, Body: body}
	if err := message.validate(); err != nil {
		return err
	}

	msg, err := compose(message, time.Now())
	if err != nil {
		return &PermanentError{Err: err}
	}

	if err := sender.deliver(context, msg); err != nil {
		if rejectedByRelay(err) {
			return &PermanentError{Err: fmt.Errorf("smtp_send_rejected: %w", err)}
		}
		return fmt.Errorf("smtp_send_failed: %w", err)
	}

	sender.logger.InfoContext(context, "mail_sent",
		slog.String("backend", "smtp"),
		slog.String("recipient", recipient),
	)

	return nil
}

// dialAndSend opens one SMTP session per message.
func (sender *SMTPSender) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	options := []gomail.Option{
		gomail.WithPort(sender.config.Port),
		gomail.WithTimeout(sender.config.Timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if sender.config.Username != "" {
		options = append(options,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(sender.config.Username),
			gomail.WithPassword(sender.config.Password),
		)
	}

	client, err := gomail.NewClient(sender.config.Host, options...)
	if err != nil {
		return fmt.Errorf("smtp_client_init_failed: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

// rejectedByRelay reports a non-transient reply to the envelope or the message content.
func rejectedByRelay(err error) bool {
	if IsPermanent(err) {
		return true
	}

	var sendErr *gomail.SendError
	if !errors.As(err, &sendErr) || sendErr.IsTemp() {
		return false
	}

	switch sendErr.Reason {
	case gomail.ErrSMTPMailFrom, gomail.ErrSMTPRcptTo, gomail.ErrSMTPDataClose:
		return true
	}
	return false
}

// compose renders m as a plain-text UTF-8 message.
func compose(m Message, date time.Time) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("smtp_invalid_sender: %w", err)
	}
	if err := msg.To(m.Recipient); err != nil {
		return nil, fmt.Errorf("smtp_invalid_recipient: %w", err)
	}

	msg.Subject(m.Subject)
	msg.SetDateWithValue(date)
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)

	return msg, nil
}
