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

package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

type widget struct {
	ID     string     `json:"id"`
	Status fsm.Status `json:"status"`
}

func (w *widget) AggregateID() string       { return w.ID }
func (w *widget) CurrentStatus() fsm.Status { return w.Status }
func (w *widget) SetStatus(s fsm.Status)    { w.Status = s }
func (w *widget) Apply(_ serde.BinarySerde, e *api.Event) error {
	w.ID = e.Aggregate.ID
	return nil
}

// scriptedApplier returns the queued errors first, then a snapshot.
type scriptedApplier struct {
	errs  []error
	calls int
}

func (a *scriptedApplier) Apply(_ context.Context, event *api.Event) (*widget, error) {
	a.calls++
	if len(a.errs) > 0 {
		err := a.errs[0]
		a.errs = a.errs[1:]
		return nil, err
	}
	return &widget{ID: event.Aggregate.ID, Status: "DONE"}, nil
}

// fakeMsg records the terminal disposition handle() chooses.
type fakeMsg struct {
	data   []byte
	acked  bool
	naked  bool
	termed bool
}

func (m *fakeMsg) Data() []byte         { return m.data }
func (m *fakeMsg) Subject() string      { return "events.order.o-1" }
func (m *fakeMsg) Reply() string        { return "" }
func (m *fakeMsg) Headers() nats.Header { return nil }
func (m *fakeMsg) Metadata() (*jetstream.MsgMetadata, error) {
	return &jetstream.MsgMetadata{}, nil
}
func (m *fakeMsg) Ack() error                       { m.acked = true; return nil }
func (m *fakeMsg) DoubleAck(context.Context) error  { m.acked = true; return nil }
func (m *fakeMsg) Nak() error                       { m.naked = true; return nil }
func (m *fakeMsg) NakWithDelay(time.Duration) error { m.naked = true; return nil }
func (m *fakeMsg) InProgress() error                { return nil }
func (m *fakeMsg) Term() error                      { m.termed = true; return nil }
func (m *fakeMsg) TermWithReason(string) error      { m.termed = true; return nil }

func eventMsg(t *testing.T) *fakeMsg {
	t.Helper()
	event := api.NewEvent(api.NewRef(api.AggregateOrder, "o-1"), "order/created", nil)
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &fakeMsg{data: data}
}

func newTestConsumer(applier *scriptedApplier, repo snapshot.Repository[*widget]) *Consumer[*widget] {
	return NewConsumer(nil, applier, repo, &serde.JsonSerde{},
		api.AggregateOrder, slog.New(slog.DiscardHandler))
}

func TestHandleAcksAndProjects(t *testing.T) {
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *widget { return &widget{} })
	c := newTestConsumer(&scriptedApplier{}, repo)

	msg := eventMsg(t)
	c.handle(context.Background(), msg)

	if !msg.acked || msg.naked || msg.termed {
		t.Errorf("disposition = ack:%v nak:%v term:%v, want ack only", msg.acked, msg.naked, msg.termed)
	}
	snap, err := repo.Load(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Status != "DONE" {
		t.Errorf("projected status = %s, want DONE", snap.Status)
	}
}

func TestHandleRetriesTransientFailures(t *testing.T) {
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *widget { return &widget{} })
	ref := api.NewRef(api.AggregateOrder, "o-1")
	applier := &scriptedApplier{errs: []error{
		apperrors.NewLogUnavailable(ref, context.DeadlineExceeded),
		apperrors.NewLogUnavailable(ref, context.DeadlineExceeded),
	}}
	c := newTestConsumer(applier, repo)

	msg := eventMsg(t)
	c.handle(context.Background(), msg)

	if !msg.acked {
		t.Error("message was not acked after transient failures resolved")
	}
	if applier.calls != 3 {
		t.Errorf("applier called %d times, want 3", applier.calls)
	}
}

func TestHandleTermsInvalidEvents(t *testing.T) {
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *widget { return &widget{} })
	applier := &scriptedApplier{errs: []error{apperrors.NewInvalidEvent("e-1", "no such aggregate")}}
	c := newTestConsumer(applier, repo)

	msg := eventMsg(t)
	c.handle(context.Background(), msg)

	if !msg.termed || msg.acked || msg.naked {
		t.Errorf("disposition = ack:%v nak:%v term:%v, want term only", msg.acked, msg.naked, msg.termed)
	}
	if applier.calls != 1 {
		t.Errorf("invalid event retried: %d calls, want 1", applier.calls)
	}
}

func TestHandleTermsUndefinedTransitions(t *testing.T) {
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *widget { return &widget{} })
	applier := &scriptedApplier{errs: []error{&fsm.UndefinedTransitionError{
		Aggregate: api.AggregateOrder,
		From:      "DONE",
		On:        "order/created",
	}}}
	c := newTestConsumer(applier, repo)

	msg := eventMsg(t)
	c.handle(context.Background(), msg)

	// The table will never accept this event; a Nak would loop forever.
	if !msg.termed || msg.acked || msg.naked {
		t.Errorf("disposition = ack:%v nak:%v term:%v, want term only", msg.acked, msg.naked, msg.termed)
	}
	if applier.calls != 1 {
		t.Errorf("undefined transition retried: %d calls, want 1", applier.calls)
	}
}

func TestHandleTermsUndecodablePayload(t *testing.T) {
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *widget { return &widget{} })
	c := newTestConsumer(&scriptedApplier{}, repo)

	msg := &fakeMsg{data: []byte("not an event")}
	c.handle(context.Background(), msg)

	if !msg.termed {
		t.Error("undecodable payload was not terminated")
	}
}
