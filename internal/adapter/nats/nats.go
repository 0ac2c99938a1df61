// Package nats implements the message queue port using NATS JetStream.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/stewardhq/steward/internal/logger"
	"github.com/stewardhq/steward/internal/port/messagequeue"
)

const (
	streamName = "STEWARD"

	headerTaskID     = "Steward-Task-Id"
	headerChangeID   = "Steward-Change-Id"
	headerRetryCount = "Steward-Retry-Count"

	// maxRetries is the number of redeliveries before a failing message
	// moves to its <subject>.dlq sibling.
	maxRetries = 3
)

// Queue implements messagequeue.Queue using NATS JetStream.
type Queue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the JetStream stream exists.
func Connect(ctx context.Context, url string) (*Queue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	// Ensure the stream exists with subjects matching our topic patterns.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"changes.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Queue{nc: nc, js: js}, nil
}

// Publish sends a message to the given subject, carrying the context's task
// and change IDs as headers so subscribers can correlate log lines.
func (q *Queue) Publish(ctx context.Context, subject string, data []byte) error {
	msg := &nats.Msg{Subject: subject, Data: data, Header: nats.Header{}}
	if id := logger.TaskID(ctx); id != "" {
		msg.Header.Set(headerTaskID, id)
	}
	if id := logger.ChangeID(ctx); id != "" {
		msg.Header.Set(headerChangeID, id)
	}
	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for messages on the given subject. Messages
// failing schema validation move straight to <subject>.dlq; handler failures
// are retried up to maxRetries times before doing the same.
func (q *Queue) Subscribe(ctx context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	consumer, err := q.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		subj, data, hdrs := msg.Subject(), msg.Data(), msg.Headers()

		if err := messagequeue.Validate(subj, data); err != nil {
			slog.Warn("message failed validation, moving to DLQ", "subject", subj, "error", err)
			q.moveToDLQ(ctx, subj, data, hdrs)
			ackOrLog(msg)
			return
		}

		if err := handler(handlerContext(ctx, hdrs), subj, data); err != nil {
			slog.Error("message handler failed", "subject", subj, "error", err)
			if retryCount(hdrs) >= maxRetries {
				q.moveToDLQ(ctx, subj, data, hdrs)
			} else {
				q.requeue(ctx, subj, data, hdrs)
			}
			ackOrLog(msg)
			return
		}
		ackOrLog(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// KeyValue creates or opens a JetStream KV bucket with the given per-entry TTL.
func (q *Queue) KeyValue(ctx context.Context, bucket string, ttl time.Duration) (jetstream.KeyValue, error) {
	kv, err := q.js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("jetstream keyvalue %s: %w", bucket, err)
	}
	return kv, nil
}

// Drain gracefully drains subscriptions before closing the connection.
func (q *Queue) Drain() error {
	return q.nc.Drain()
}

// Close shuts down the NATS connection immediately.
func (q *Queue) Close() error {
	q.nc.Close()
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (q *Queue) IsConnected() bool {
	return q.nc != nil && q.nc.IsConnected()
}

// moveToDLQ republishes a poison message to the subject's .dlq sibling,
// which the stream captures but no engine consumer filters on.
func (q *Queue) moveToDLQ(ctx context.Context, subject string, data []byte, hdrs nats.Header) {
	msg := &nats.Msg{Subject: subject + ".dlq", Data: data, Header: copyHeader(hdrs)}
	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		slog.Error("nats DLQ publish failed", "subject", subject, "error", err)
	}
}

// requeue republishes the message with an incremented retry count. The
// original is acked by the caller, so the retry header survives redelivery.
func (q *Queue) requeue(ctx context.Context, subject string, data []byte, hdrs nats.Header) {
	h := copyHeader(hdrs)
	h.Set(headerRetryCount, strconv.Itoa(retryCount(hdrs)+1))
	msg := &nats.Msg{Subject: subject, Data: data, Header: h}
	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		slog.Error("nats retry publish failed", "subject", subject, "error", err)
	}
}

func retryCount(hdrs nats.Header) int {
	n, _ := strconv.Atoi(hdrs.Get(headerRetryCount))
	return n
}

func copyHeader(hdrs nats.Header) nats.Header {
	h := nats.Header{}
	for k, vs := range hdrs {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	return h
}

// handlerContext restores the correlation IDs carried in message headers.
func handlerContext(ctx context.Context, hdrs nats.Header) context.Context {
	if id := hdrs.Get(headerTaskID); id != "" {
		ctx = logger.WithTaskID(ctx, id)
	}
	if id := hdrs.Get(headerChangeID); id != "" {
		ctx = logger.WithChangeID(ctx, id)
	}
	return ctx
}

func ackOrLog(msg jetstream.Msg) {
	if err := msg.Ack(); err != nil {
		slog.Error("nats ack failed", "error", err)
	}
}
