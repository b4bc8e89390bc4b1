// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Broker Client

const (
	// DefaultMaxAttempts applies when a zero attempt budget is configured.
	DefaultMaxAttempts = 5

	deliveryCountHeader = "x-delivery-count"
	maxRetryDelay       = 30 * time.Second
)

// Delivery is one queued body together with its 1-based delivery attempt.
type Delivery struct {
	Body    []byte
	Attempt int
}

// QueueClient wraps a RabbitMQ connection/channel pair bound to one durable queue.
type QueueClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	mu      sync.Mutex
}

// DeadLetterQueue names the queue that receives messages given up on.
func DeadLetterQueue(queue string) string {
	return queue + ".dead"
}

/*
DialQueue connects to RabbitMQ, enables publisher confirms, and declares queue.

Description: queue is a quorum queue so the broker counts redeliveries.
Rejected messages and messages redelivered more than twice maxAttempts
times are dead-lettered to [DeadLetterQueue].

Parameters:
  - url: string (amqp:// URL)
  - queue: string
  - maxAttempts: int (DefaultMaxAttempts when not positive)

Returns:
  - *QueueClient: Ready to publish or consume
  - error: Connection or declaration failures
*/
func DialQueue(url, queue string, maxAttempts int) (*QueueClient, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("mail: rabbitmq url is required")
	}
	if strings.TrimSpace(queue) == "" {
		return nil, errors.New("mail: rabbitmq queue is required")
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mail: rabbitmq dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mail: rabbitmq channel failed: %w", err)
	}

	client := &QueueClient{conn: conn, channel: channel, queue: queue}
	if err := client.declare(maxAttempts); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func (client *QueueClient) declare(maxAttempts int) error {
	if err := client.channel.Confirm(false); err != nil {
		return fmt.Errorf("mail: rabbitmq confirm mode failed: %w", err)
	}

	deadLetter := DeadLetterQueue(client.queue)
	if _, err := client.channel.QueueDeclare(deadLetter, true, false, false, false, nil); err != nil {
		return fmt.Errorf("mail: rabbitmq dead letter declare failed: %w", err)
	}

	// The broker limit sits above the relay's own so the relay still sees the final attempt.
	if _, err := client.channel.QueueDeclare(client.queue, true, false, false, false, amqp.Table{
		"x-queue-type":              "quorum",
		"x-delivery-limit":          int32(2 * maxAttempts),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": deadLetter,
	}); err != nil {
		return fmt.Errorf("mail: rabbitmq queue declare failed: %w", err)
	}

	return nil
}

// Publish sends body to the queue and waits for the broker to confirm it.
func (client *QueueClient) Publish(context context.Context, body []byte) error {
	client.mu.Lock()
	defer client.mu.Unlock()

	confirmation, err := client.channel.PublishWithDeferredConfirmWithContext(context, "", client.queue, false, false, newPublishing(body, time.Now()))
	if err != nil {
		return fmt.Errorf("mail: rabbitmq publish failed: %w", err)
	}

	acked, err := confirmation.WaitContext(context)
	if err != nil {
		return fmt.Errorf("mail: rabbitmq confirm wait failed: %w", err)
	}
	if !acked {
		return errors.New("mail: rabbitmq broker rejected message")
	}

	return nil
}

/*
Consume delivers queued bodies to handler until ctx is cancelled.

Description: A nil result acks the delivery. A [PermanentError] rejects it
without requeue, which dead-letters it. Any other error requeues it after a
delay that grows with the attempt number.
*/
func (client *QueueClient) Consume(ctx context.Context, handler func(context.Context, Delivery) error) error {
	if err := client.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("mail: rabbitmq qos failed: %w", err)
	}

	consumerTag := "mail-relay-" + uuid.New()
	deliveries, err := client.channel.Consume(client.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("mail: rabbitmq consume failed: %w", err)
	}
	defer func() {
		_ = client.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("mail: rabbitmq delivery channel closed")
			}

			attempt := deliveryAttempt(delivery.Headers)
			err := handler(ctx, Delivery{Body: delivery.Body, Attempt: attempt})
			var permanent *PermanentError
			switch {
			case err == nil:
				_ = delivery.Ack(false)
			case errors.As(err, &permanent):
				_ = delivery.Nack(false, false)
			default:
				waitErr := sleepContext(ctx, retryDelay(attempt))
				_ = delivery.Nack(false, true)
				if waitErr != nil {
					return waitErr
				}
			}
		}
	}
}

// Close closes the underlying channel and connection.
func (client *QueueClient) Close() error {
	if client.channel != nil {
		_ = client.channel.Close()
	}
	if client.conn != nil {
		return client.conn.Close()
	}
	return nil
}

// newPublishing wraps body in a persistent JSON message with a fresh id.
func newPublishing(body []byte, now time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New(),
		Timestamp:    now,
		Body:         body,
	}
}

// deliveryAttempt reads the broker's redelivery counter. The first delivery carries none.
func deliveryAttempt(headers amqp.Table) int {
	switch count := headers[deliveryCountHeader].(type) {
	case int64:
		return int(count) + 1
	case int32:
		return int(count) + 1
	case int:
		return count + 1
	}
	return 1
}

// retryDelay grows linearly with attempt and is capped at maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	delay := time.Duration(attempt) * time.Second
	if delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// # Sender

// Publisher is the part of [QueueClient] used by [QueueSender].
type Publisher interface {
	Publish(context context.Context, body []byte) error
}

// QueueSender hands messages to the broker; delivery happens in a [Relay].
type QueueSender struct {
	publisher Publisher
	from      string
	logger    *slog.Logger
}

// NewQueueSender constructs a [QueueSender].
func NewQueueSender(publisher Publisher, from string, logger *slog.Logger) *QueueSender {
	return &QueueSender{publisher: publisher, from: from, logger: logger}
}

// Send enqueues one message. It returns once the broker has confirmed it.
func (sender *QueueSender) Send(context context.Context, recipient, subject, body string) error {
	message := Message{From: sender.from, Recipient: recipient, Subject: subject, Body: body}
	if err := message.validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("mail_queue_encode_failed: %w", err)
	}

	if err := sender.publisher.Publish(context, payload); err != nil {
		return fmt.Errorf("mail_queue_publish_failed: %w", err)
	}

	sender.logger.InfoContext(context, "mail_enqueued",
		slog.String("backend", "queue"),
		slog.String("recipient", recipient),
	)

	return nil
}

// # Relay

// Consumer is the part of [QueueClient] used by [Relay].
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, Delivery) error) error
}

// Undeliverable is told the recipient of a message the relay gave up on.
type Undeliverable func(ctx context.Context, recipient string) error

// RelayPolicy bounds retries and names the give-up hook.
type RelayPolicy struct {
	// MaxAttempts is the number of sends tried per message. DefaultMaxAttempts when not positive.
	MaxAttempts int

	// OnUndeliverable runs once the relay stops trying. Optional.
	OnUndeliverable Undeliverable
}

// Relay moves queued messages to a synchronous [Sender].
type Relay struct {
	consumer Consumer
	sender   Sender
	policy   RelayPolicy
	logger   *slog.Logger
}

// NewRelay constructs a [Relay].
func NewRelay(consumer Consumer, sender Sender, policy RelayPolicy, logger *slog.Logger) *Relay {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultMaxAttempts
	}
	return &Relay{consumer: consumer, sender: sender, policy: policy, logger: logger}
}

// Run blocks until ctx is cancelled or the broker connection drops.
func (relay *Relay) Run(ctx context.Context) error {
	relay.logger.Info("mail_relay_started", slog.Int("max_attempts", relay.policy.MaxAttempts))
	err := relay.consumer.Consume(ctx, relay.Handle)
	if errors.Is(err, context.Canceled) {
		relay.logger.Info("mail_relay_stopped")
		return nil
	}
	return err
}

/*
Handle decodes and delivers one queued body.

Description: Transient send failures are returned as is so the broker
redelivers. The relay gives up on a permanent failure or on the last
attempt: OnUndeliverable runs and a [PermanentError] is returned. A failing
OnUndeliverable is returned as a transient error so the message comes back.
Past MaxAttempts only the hook is retried.

Parameters:
  - ctx: context.Context
  - delivery: Delivery

Returns:
  - error: nil once sent, PermanentError once given up on, otherwise retryable
*/
func (relay *Relay) Handle(ctx context.Context, delivery Delivery) error {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		relay.logger.ErrorContext(ctx, "mail_relay_decode_failed", slog.Any("error", err))
		return &PermanentError{Err: err}
	}
	if err := message.validate(); err != nil {
		relay.logger.ErrorContext(ctx, "mail_relay_invalid_message", slog.Any("error", err))
		return &PermanentError{Err: err}
	}

	if delivery.Attempt > relay.policy.MaxAttempts {
		return relay.giveUp(ctx, message, delivery.Attempt, errors.New("mail: delivery attempts exhausted"))
	}

	err := relay.sender.Send(ctx, message.Recipient, message.Subject, message.Body)
	if err == nil {
		return nil
	}

	if !IsPermanent(err) && delivery.Attempt < relay.policy.MaxAttempts {
		relay.logger.WarnContext(ctx, "mail_relay_delivery_failed",
			slog.String("recipient", message.Recipient),
			slog.Int("attempt", delivery.Attempt),
			slog.Any("error", err),
		)
		return err
	}

	return relay.giveUp(ctx, message, delivery.Attempt, err)
}

func (relay *Relay) giveUp(ctx context.Context, message Message, attempt int, cause error) error {
	relay.logger.ErrorContext(ctx, "mail_relay_undeliverable",
		slog.String("recipient", message.Recipient),
		slog.Int("attempt", attempt),
		slog.Any("error", cause),
	)

	if relay.policy.OnUndeliverable != nil {
		if err := relay.policy.OnUndeliverable(ctx, message.Recipient); err != nil {
			relay.logger.ErrorContext(ctx, "mail_relay_release_failed",
				slog.String("recipient", message.Recipient),
				slog.Any("error", err),
			)
			return fmt.Errorf("mail_relay_release_failed: %w", err)
		}
	}

	var permanent *PermanentError
	if errors.As(cause, &permanent) {
		return cause
	}
	return &PermanentError{Err: cause}
}
