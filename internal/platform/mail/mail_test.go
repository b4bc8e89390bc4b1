// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/textproto"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/taibuivan/yamdb/internal/platform/config"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestCompose(t *testing.T) {
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg, err := compose(Message{
		From:      "webmaster@localhost",
		Recipient: "alice@example.com",
		Subject:   "Your confirmation code",
		Body:      "Your confirmation code: ABC123\nThanks",
	}, date)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "webmaster@localhost")
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "Subject: Your confirmation code\r\n")
	assert.Contains(t, raw, "Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n")
	assert.Contains(t, raw, "Your confirmation code: ABC123")

	_, err = compose(Message{From: "webmaster@localhost", Recipient: "not an address"}, date)
	assert.Error(t, err)
}

func TestSMTPSender_Send(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "relay", Port: 2525, From: "webmaster@localhost"}, discard)
	assert.Equal(t, DefaultSMTPTimeout, sender.config.Timeout)

	var sent *gomail.Msg
	sender.deliver = func(_ context.Context, msg *gomail.Msg) error {
		sent = msg
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), "alice@example.com", "Hi", "Body"))
	require.NotNil(t, sent)

	recipients, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, recipients)

	from, err := sent.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "webmaster@localhost", from)
}

func TestSMTPSender_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), false},
		{"greylisted", &textproto.Error{Code: 451, Msg: "try again later"}, false},
		{"mailbox unavailable", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, true},
		{"recipient refused", &gomail.SendError{Reason: gomail.ErrSMTPRcptTo}, true},
		{"connection check", &gomail.SendError{Reason: gomail.ErrConnCheck}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewSMTPSender(SMTPConfig{Host: "relay", Port: 25, From: "webmaster@localhost"}, discard)
			sender.deliver = func(context.Context, *gomail.Msg) error { return tt.err }

			err := sender.Send(context.Background(), "alice@example.com", "Hi", "Body")
			require.Error(t, err)
			assert.Equal(t, tt.permanent, IsPermanent(err))
		})
	}
}

func TestSMTPSender_HonoursContext(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{Host: "relay", Port: 25, From: "webmaster@localhost"}, discard)
	sender.deliver = func(ctx context.Context, _ *gomail.Msg) error {
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := sender.Send(ctx, "alice@example.com", "Hi", "Body")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsPermanent(err))
	assert.ErrorIs(t, sender.Send(context.Background(), "", "Hi", "Body"), ErrNoRecipient)
}

type recordingPublisher struct {
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.bodies = append(p.bodies, body)
	return nil
}

func TestQueueSender_Send(t *testing.T) {
	publisher := &recordingPublisher{}
	sender := NewQueueSender(publisher, "webmaster@localhost", discard)

	require.NoError(t, sender.Send(context.Background(), "alice@example.com", "Subject", "Body"))
	require.Len(t, publisher.bodies, 1)

	var message Message
	require.NoError(t, json.Unmarshal(publisher.bodies[0], &message))
	assert.Equal(t, Message{From: "webmaster@localhost", Recipient: "alice@example.com", Subject: "Subject", Body: "Body"}, message)

	publisher.err = errors.New("broker down")
	assert.Error(t, sender.Send(context.Background(), "alice@example.com", "Subject", "Body"))
}

type recordingSender struct {
	sent  []Message
	calls int
	err   error
}

func (s *recordingSender) Send(_ context.Context, recipient, subject, body string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, Message{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func mustEncode(t *testing.T, message Message) []byte {
	t.Helper()
	body, err := json.Marshal(message)
	require.NoError(t, err)
	return body
}

type releaseLog struct {
	recipients []string
	err        error
}

func (r *releaseLog) release(_ context.Context, recipient string) error {
	if r.err != nil {
		return r.err
	}
	r.recipients = append(r.recipients, recipient)
	return nil
}

func TestRelay_Handle(t *testing.T) {
	sender := &recordingSender{}
	relay := NewRelay(nil, sender, RelayPolicy{}, discard)
	assert.Equal(t, DefaultMaxAttempts, relay.policy.MaxAttempts)

	body := mustEncode(t, Message{Recipient: "bob@example.com", Subject: "S", Body: "B"})
	require.NoError(t, relay.Handle(context.Background(), Delivery{Body: body, Attempt: 1}))
	assert.Len(t, sender.sent, 1)

	var permanent *PermanentError
	assert.ErrorAs(t, relay.Handle(context.Background(), Delivery{Body: []byte("not json"), Attempt: 1}), &permanent)
	assert.ErrorAs(t, relay.Handle(context.Background(), Delivery{Body: []byte(`{"subject":"S"}`), Attempt: 1}), &permanent)
}

func TestRelay_GivesUpAndReleases(t *testing.T) {
	body := mustEncode(t, Message{Recipient: "bob@example.com", Subject: "S", Body: "B"})
	busy := errors.New("relay busy")

	tests := []struct {
		name        string
		sendErr     error
		attempt     int
		releaseErr  error
		wantFinal   bool
		wantRelease bool
		wantSends   int
	}{
		{"transient before last attempt", busy, 1, nil, false, false, 1},
		{"transient on last attempt", busy, 3, nil, true, true, 1},
		{"mailbox rejected on first attempt", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}, 1, nil, true, true, 1},
		{"beyond budget skips sending", busy, 4, nil, true, true, 0},
		{"failed release is retried", &PermanentError{Err: busy}, 1, errors.New("redis down"), false, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{err: tt.sendErr}
			released := &releaseLog{err: tt.releaseErr}
			relay := NewRelay(nil, sender, RelayPolicy{MaxAttempts: 3, OnUndeliverable: released.release}, discard)

			err := relay.Handle(context.Background(), Delivery{Body: body, Attempt: tt.attempt})
			require.Error(t, err)
			assert.Equal(t, tt.wantFinal, IsPermanent(err))
			assert.Equal(t, tt.wantSends, sender.calls)
			if tt.wantRelease {
				assert.Equal(t, []string{"bob@example.com"}, released.recipients)
			} else {
				assert.Empty(t, released.recipients)
			}
		})
	}
}

func TestDeliveryAttempt(t *testing.T) {
	assert.Equal(t, 1, deliveryAttempt(nil))
	assert.Equal(t, 1, deliveryAttempt(amqp.Table{"x-delivery-count": int64(0)}))
	assert.Equal(t, 3, deliveryAttempt(amqp.Table{"x-delivery-count": int64(2)}))
	assert.Equal(t, 2, deliveryAttempt(amqp.Table{"x-delivery-count": int32(1)}))
	assert.Equal(t, 1, deliveryAttempt(amqp.Table{"x-delivery-count": "two"}))
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Second, retryDelay(1))
	assert.Equal(t, 5*time.Second, retryDelay(5))
	assert.Equal(t, maxRetryDelay, retryDelay(100))
}

func TestNewPublishing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := newPublishing([]byte(`{}`), now)
	second := newPublishing([]byte(`{}`), now)

	assert.True(t, uuid.IsValid(first.MessageId))
	assert.NotEqual(t, first.MessageId, second.MessageId)
	assert.Equal(t, amqp.Persistent, first.DeliveryMode)
	assert.Equal(t, "application/json", first.ContentType)
	assert.Equal(t, now, first.Timestamp)
}

func TestDeadLetterQueue(t *testing.T) {
	assert.Equal(t, "yamdb.mail.dead", DeadLetterQueue("yamdb.mail"))
}

type stubConsumer struct {
	err error
}

func (c stubConsumer) Consume(context.Context, func(context.Context, Delivery) error) error {
	return c.err
}

func TestRelay_Run(t *testing.T) {
	assert.NoError(t, NewRelay(stubConsumer{err: context.Canceled}, &recordingSender{}, RelayPolicy{}, discard).Run(context.Background()))
	assert.Error(t, NewRelay(stubConsumer{err: errors.New("closed")}, &recordingSender{}, RelayPolicy{}, discard).Run(context.Background()))
}

func TestLogSender(t *testing.T) {
	sender := NewLogSender("webmaster@localhost", discard)
	assert.NoError(t, sender.Send(context.Background(), "alice@example.com", "S", "B"))
	assert.ErrorIs(t, sender.Send(context.Background(), "", "S", "B"), ErrNoRecipient)
}

func TestNewSender_SelectsBackend(t *testing.T) {
	sender, closeFn, err := NewSender(config.MailConfig{Backend: config.MailBackendLog, From: "webmaster@localhost"}, discard)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, sender)
	assert.NoError(t, closeFn())

	sender, _, err = NewSender(config.MailConfig{Backend: config.MailBackendSMTP, SMTPHost: "relay", SMTPPort: 2525}, discard)
	require.NoError(t, err)
	require.IsType(t, &SMTPSender{}, sender)
	assert.Equal(t, "relay", sender.(*SMTPSender).config.Host)
	assert.Equal(t, DefaultSMTPTimeout, sender.(*SMTPSender).config.Timeout)

	_, closeFn, err = NewSender(config.MailConfig{Backend: "pigeon"}, discard)
	assert.Error(t, err)
	assert.NoError(t, closeFn())

	_, _, err = NewSender(config.MailConfig{Backend: config.MailBackendQueue}, discard)
	assert.Error(t, err)
}
