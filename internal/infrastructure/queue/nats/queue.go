package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lfarias-dev/labreport-pipeline/internal/infrastructure/resilience"
)

// FinalizedEvent is the wire payload published after a report's final
// artifact is persisted.
type FinalizedEvent struct {
	DocumentKey string    `json:"document_key"`
	OwnerKey    string    `json:"owner_key"`
	FinalizedAt time.Time `json:"finalized_at"`
}

type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	ResilienceExecutor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("labreport-pipeline"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishReportFinalized(ctx context.Context, documentKey, ownerKey string) error {
	payload, err := json.Marshal(FinalizedEvent{
		DocumentKey: documentKey,
		OwnerKey:    ownerKey,
		FinalizedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal finalized event: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	if q.executor != nil {
		return q.executor.Execute(ctx, "nats.publish", call, classifyBrokerError)
	}
	return call(ctx)
}

// SubscribeReportFinalized blocks until ctx is canceled, delivering each
// finalized event to handler through a queue group so multiple workers share
// the load.
func (q *Queue) SubscribeReportFinalized(ctx context.Context, handler func(context.Context, FinalizedEvent) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "audit-workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var event FinalizedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("drop malformed finalized event", "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, event); err != nil {
			slog.Error("finalized event handler failed",
				"document_key", event.DocumentKey, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
