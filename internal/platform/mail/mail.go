// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional email such as confirmation codes.

Backends:

  - SMTPSender: synchronous delivery through an SMTP relay.
  - QueueSender: publishes a [Message] to RabbitMQ; a [Relay] consumes the
    queue and hands each message to an SMTPSender. Messages the relay gives
    up on are dead-lettered and reported through [RelayPolicy].
  - LogSender: writes the message to the structured log (development only).

Every backend satisfies [Sender]. A non-nil error from Send means the
message was not accepted and callers must treat the operation as failed.
Errors for which [IsPermanent] holds will fail the same way on retry.
*/
package mail

import (
	"context"
	"errors"
	"net/textproto"
)

// ErrNoRecipient is returned when a message has no destination address.
var ErrNoRecipient = errors.New("mail: recipient is required")

// Sender is the outbound email collaborator.
type Sender interface {
	Send(context context.Context, recipient, subject, body string) error
}

// Message is the wire form of a queued email.
type Message struct {
	From      string `json:"from"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// validate checks the fields every backend depends on.
func (m Message) validate() error {
	if m.Recipient == "" {
		return ErrNoRecipient
	}
	return nil
}

// PermanentError marks a delivery that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "mail: permanent failure: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is a [PermanentError] or a 5xx SMTP reply.
func IsPermanent(err error) bool {
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return true
	}

	var reply *textproto.Error
	return errors.As(err, &reply) && reply.Code >= 500
}
