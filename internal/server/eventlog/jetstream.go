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

package eventlog

import (
	"context"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
)

var _ Store = (*JetStream)(nil)

// JetStream is the durable Store: one stream holds every aggregate's
// events, one subject per aggregate instance. The stream's sequence
// numbers provide the replay tie-break; the MsgID header provides append
// dedup, which is what makes chained follow-on events safe to re-emit.
type JetStream struct {
	conn   *jetstreamx.Connection
	stream string
	conv   serde.BinarySerde
}

func NewJetStream(conn *jetstreamx.Connection, stream string, conv serde.BinarySerde) *JetStream {
	return &JetStream{
		conn:   conn,
		stream: stream,
		conv:   conv,
	}
}

// Append publishes the event to its aggregate's subject. The returned
// copy carries the stream sequence assigned by the broker.
func (s *JetStream) Append(ctx context.Context, event *api.Event) (*api.Event, error) {
	if event == nil || !event.Aggregate.Valid() {
		return nil, errInvalidAppend(event)
	}

	data, err := s.conv.SerializeBinary(event)
	if err != nil {
		return nil, fmt.Errorf("append: encode event %s: %w", event.ID, err)
	}

	msg := &nats.Msg{
		Subject: event.Aggregate.Subject(),
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set(api.EventTypeHeader, string(event.Type))
	msg.Header.Set(api.EventIDHeader, event.ID)

	ack, err := s.conn.PublishJS(ctx, msg, jetstream.WithMsgID(event.ID))
	if err != nil {
		return nil, err
	}

	stored := *event
	stored.Sequence = ack.Sequence
	return &stored, nil
}

// Events fetches the aggregate's full subject history through an
// ephemeral ordered consumer.
func (s *JetStream) Events(ctx context.Context, ref api.AggregateRef) ([]*api.Event, error) {
	js, err := s.conn.JS()
	if err != nil {
		return nil, err
	}

	consumer, err := js.OrderedConsumer(ctx, s.stream, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{ref.Subject()},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("events: ordered consumer on %s: %w", s.stream, err)
	}

	pending := consumer.CachedInfo().NumPending
	events := make([]*api.Event, 0, pending)
	for uint64(len(events)) < pending {
		batch, err := consumer.FetchNoWait(fetchBatchSize)
		if err != nil {
			return nil, fmt.Errorf("events: fetch %s: %w", ref.Subject(), err)
		}
		n := 0
		for msg := range batch.Messages() {
			event, err := s.decode(msg)
			if err != nil {
				return nil, err
			}
			events = append(events, event)
			n++
		}
		if err := batch.Error(); err != nil {
			return nil, fmt.Errorf("events: fetch %s: %w", ref.Subject(), err)
		}
		if n == 0 {
			break
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].Sequence < events[j].Sequence
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return events, nil
}

const fetchBatchSize = 256

func (s *JetStream) decode(msg jetstream.Msg) (*api.Event, error) {
	var event api.Event
	if err := s.conv.DeserializeBinary(msg.Data(), &event); err != nil {
		return nil, fmt.Errorf("events: decode message on %s: %w", msg.Subject(), err)
	}
	if meta, err := msg.Metadata(); err == nil {
		event.Sequence = meta.Sequence.Stream
	}
	return &event, nil
}
