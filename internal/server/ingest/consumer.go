// Copyright 2025 Nguyen Nhat Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ingest feeds appended events into the replication engine. In
// BASE mode a durable consumer per aggregate type replays asynchronously
// and materializes snapshots into the KV projection; in ACID mode the
// action layer uses the engine directly as its inline applier and this
// package is idle for that type.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

const (
	defaultAttempts = uint(5)
	defaultDelay    = 200 * time.Millisecond
)

// Consumer replicates one aggregate type from the event stream.
type Consumer[A fsm.Aggregate] struct {
	conn      *jetstreamx.Connection
	applier   action.Applier[A]
	repo      snapshot.Repository[A]
	conv      serde.BinarySerde
	aggregate api.AggregateType
	logger    *slog.Logger
}

func NewConsumer[A fsm.Aggregate](
	conn *jetstreamx.Connection,
	applier action.Applier[A],
	repo snapshot.Repository[A],
	conv serde.BinarySerde,
	aggregate api.AggregateType,
	logger *slog.Logger,
) *Consumer[A] {
	return &Consumer[A]{
		conn:      conn,
		applier:   applier,
		repo:      repo,
		conv:      conv,
		aggregate: aggregate,
		logger:    logger.With("aggregate_type", aggregate.String()),
	}
}

// Run consumes the aggregate type's subject space until the context is
// cancelled. The durable name pins progress across restarts; replayed
// deliveries are harmless because Apply derives the same snapshot from
// the same log.
func (c *Consumer[A]) Run(ctx context.Context) error {
	consumer, err := c.conn.EnsureConsumer(ctx, api.EventsStream, jetstream.ConsumerConfig{
		Durable:       fmt.Sprintf(api.ReplicatorConsumerPattern, c.aggregate),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		FilterSubject: fmt.Sprintf(api.EventsTypeFilterSubjectPattern, c.aggregate),
	})
	if err != nil {
		return fmt.Errorf("ingest %s: ensure consumer: %w", c.aggregate, err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		c.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("ingest %s: consume: %w", c.aggregate, err)
	}

	<-ctx.Done()
	cc.Stop()
	c.logger.Debug("replicator stopped")
	return nil
}

func (c *Consumer[A]) handle(ctx context.Context, msg jetstream.Msg) {
	var event api.Event
	if err := c.conv.DeserializeBinary(msg.Data(), &event); err != nil {
		c.logger.Error("undecodable event, terminating delivery", "subject", msg.Subject(), "error", err)
		msg.Term()
		return
	}

	snap, err := retry.DoWithData(
		func() (A, error) { return c.applier.Apply(ctx, &event) },
		retry.Context(ctx),
		retry.Attempts(defaultAttempts),
		retry.Delay(defaultDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, apperrors.ErrLogUnavailable)
		}),
	)
	if err != nil {
		var undefined *fsm.UndefinedTransitionError
		switch {
		case errors.Is(err, apperrors.ErrInvalidEvent):
			c.logger.Error("invalid event, terminating delivery", "event_id", event.ID, "error", err)
			msg.Term()
		case errors.As(err, &undefined):
			// Log and table disagree; redelivery can never succeed.
			c.logger.Error("logged event has no transition, terminating delivery", "event_id", event.ID, "error", err)
			msg.Term()
		default:
			c.logger.Warn("replay failed, requeueing", "event_id", event.ID, "error", err)
			msg.Nak()
		}
		return
	}

	if err := c.repo.Save(ctx, snap); err != nil {
		c.logger.Warn("snapshot projection failed, requeueing", "event_id", event.ID, "error", err)
		msg.Nak()
		return
	}

	c.logger.Debug("event replicated",
		"event_id", event.ID,
		"event_type", event.Type.String(),
		"aggregate_id", event.Aggregate.ID,
		"status", snap.CurrentStatus().String(),
	)
	msg.Ack()
}
