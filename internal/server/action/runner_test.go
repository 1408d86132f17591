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

package action

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

const (
	statusCreated   fsm.Status = "CREATED"
	statusConnected fsm.Status = "CONNECTED"
)

const (
	evCreated   api.EventType = "ticket/created"
	evConnected api.EventType = "ticket/connected"
)

type ticket struct {
	ID     string     `json:"id"`
	Status fsm.Status `json:"status"`
	Peer   string     `json:"peer,omitempty"`
}

func (t *ticket) AggregateID() string       { return t.ID }
func (t *ticket) CurrentStatus() fsm.Status { return t.Status }
func (t *ticket) SetStatus(s fsm.Status)    { t.Status = s }
func (t *ticket) Apply(_ serde.BinarySerde, e *api.Event) error {
	t.ID = e.Aggregate.ID
	return nil
}

func ticketDefinition(t *testing.T) *fsm.Definition[*ticket] {
	t.Helper()
	def, err := fsm.NewDefinition(api.AggregateOrder, []fsm.Transition[*ticket]{
		{From: fsm.Initial, On: evCreated, To: statusCreated},
		{From: statusCreated, On: evConnected, To: statusConnected},
	})
	if err != nil {
		t.Fatalf("NewDefinition() error = %v", err)
	}
	return def
}

func newTicketRunner(t *testing.T, log eventlog.Store, repo snapshot.Repository[*ticket]) *Runner[*ticket] {
	t.Helper()
	return NewRunner(ticketDefinition(t), log, repo,
		nil, &serde.JsonSerde{},
		func() *ticket { return &ticket{} },
		slog.New(slog.DiscardHandler))
}

func createRequest(ref api.AggregateRef) Request[*ticket] {
	return Request[*ticket]{
		Ref:   ref,
		Name:  "Create",
		Event: evCreated,
		Mutate: func(tk *ticket) error {
			tk.ID = ref.ID
			return nil
		},
	}
}

func TestRunnerRunAppendsAndPersists(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemory()
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *ticket { return &ticket{} })
	runner := newTicketRunner(t, log, repo)
	ref := api.NewRef(api.AggregateOrder, "o-1")

	snap, err := runner.Run(ctx, createRequest(ref))
	if err != nil {
		t.Fatalf("Run(Create) error = %v", err)
	}
	if snap.Status != statusCreated {
		t.Errorf("status = %s, want %s", snap.Status, statusCreated)
	}

	snap, err = runner.Run(ctx, Request[*ticket]{
		Ref:   ref,
		Name:  "Connect",
		Event: evConnected,
		Mutate: func(tk *ticket) error {
			tk.Peer = "p-1"
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run(Connect) error = %v", err)
	}
	if snap.Status != statusConnected || snap.Peer != "p-1" {
		t.Errorf("snapshot = %+v, want CONNECTED with peer p-1", snap)
	}

	events, err := log.Events(ctx, ref)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("log length = %d, want 2", len(events))
	}
	if events[0].Type != evCreated || events[1].Type != evConnected {
		t.Errorf("log types = %s, %s", events[0].Type, events[1].Type)
	}

	stored, err := repo.Load(ctx, ref.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Status != statusConnected || stored.Peer != "p-1" {
		t.Errorf("persisted snapshot = %+v", stored)
	}
}

func TestRunnerRunRejectsIllegalState(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemory()
	repo := snapshot.NewMemory[*ticket](&serde.JsonSerde{}, func() *ticket { return &ticket{} })
	runner := newTicketRunner(t, log, repo)
	ref := api.NewRef(api.AggregateOrder, "o-1")

	// Connect before Create: the aggregate is still in its initial state.
	_, err := runner.Run(ctx, Request[*ticket]{Ref: ref, Name: "Connect", Event: evConnected})
	if !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("Run() error = %v, want ErrIllegalState", err)
	}

	// A rejected action appends nothing.
	events, err := log.Events(ctx, ref)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("log length = %d after rejected action, want 0", len(events))
	}
}

func TestRunnerRunRollsBackOnEmitFailure(t *testing.T) {
	ctx := context.Background()
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *ticket { return &ticket{} })
	okLog := eventlog.NewMemory()
	okRunner := newTicketRunner(t, okLog, repo)
	ref := api.NewRef(api.AggregateOrder, "o-1")

	if _, err := okRunner.Run(ctx, createRequest(ref)); err != nil {
		t.Fatalf("Run(Create) error = %v", err)
	}

	runner := newTicketRunner(t, failingLog{}, repo)
	_, err := runner.Run(ctx, Request[*ticket]{
		Ref:   ref,
		Name:  "Connect",
		Event: evConnected,
		Mutate: func(tk *ticket) error {
			tk.Peer = "p-1"
			return nil
		},
	})
	if !errors.Is(err, apperrors.ErrLogUnavailable) {
		t.Fatalf("Run() error = %v, want ErrLogUnavailable", err)
	}

	restored, err := repo.Load(ctx, ref.ID)
	if err != nil {
		t.Fatalf("Load() after rollback error = %v", err)
	}
	if restored.Status != statusCreated || restored.Peer != "" {
		t.Errorf("restored snapshot = %+v, want pre-action CREATED state", restored)
	}
}

func TestRunnerRunRollsBackOnFailedInlineReplay(t *testing.T) {
	ctx := context.Background()
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, func() *ticket { return &ticket{} })
	log := eventlog.NewMemory()
	ref := api.NewRef(api.AggregateOrder, "o-1")

	if _, err := newTicketRunner(t, log, repo).Run(ctx, createRequest(ref)); err != nil {
		t.Fatalf("Run(Create) error = %v", err)
	}

	// Same repo and log, but the synchronous replay fails after the
	// append: the persisted snapshot must be rolled back to the
	// pre-action state even though the event is durable.
	runner := NewRunner(ticketDefinition(t), log, repo,
		failingApplier{}, conv,
		func() *ticket { return &ticket{} },
		slog.New(slog.DiscardHandler))
	_, err := runner.Run(ctx, Request[*ticket]{
		Ref:   ref,
		Name:  "Connect",
		Event: evConnected,
		Mutate: func(tk *ticket) error {
			tk.Peer = "p-1"
			return nil
		},
	})
	if err == nil {
		t.Fatal("Run() error = nil, want replay failure")
	}

	restored, err := repo.Load(ctx, ref.ID)
	if err != nil {
		t.Fatalf("Load() after rollback error = %v", err)
	}
	if restored.Status != statusCreated || restored.Peer != "" {
		t.Errorf("restored snapshot = %+v, want pre-action CREATED state", restored)
	}
}

func TestRunnerRunDeletesSnapshotOnFailedGenesis(t *testing.T) {
	ctx := context.Background()
	repo := snapshot.NewMemory[*ticket](&serde.JsonSerde{}, func() *ticket { return &ticket{} })
	runner := newTicketRunner(t, failingLog{}, repo)
	ref := api.NewRef(api.AggregateOrder, "o-1")

	_, err := runner.Run(ctx, createRequest(ref))
	if !errors.Is(err, apperrors.ErrLogUnavailable) {
		t.Fatalf("Run() error = %v, want ErrLogUnavailable", err)
	}

	if _, err := repo.Load(ctx, ref.ID); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Load() after failed genesis error = %v, want ErrNotFound", err)
	}
}

func TestRunnerRunCompensationFailure(t *testing.T) {
	ctx := context.Background()
	conv := &serde.JsonSerde{}
	inner := snapshot.NewMemory(conv, func() *ticket { return &ticket{} })
	okLog := eventlog.NewMemory()
	if _, err := newTicketRunner(t, okLog, inner).Run(ctx, createRequest(api.NewRef(api.AggregateOrder, "o-1"))); err != nil {
		t.Fatalf("Run(Create) error = %v", err)
	}

	repo := &flakyRepo{Repository: inner, failAfter: 1}
	runner := newTicketRunner(t, failingLog{}, repo)
	_, err := runner.Run(ctx, Request[*ticket]{Ref: api.NewRef(api.AggregateOrder, "o-1"), Name: "Connect", Event: evConnected})
	if !errors.Is(err, apperrors.ErrCompensation) {
		t.Fatalf("Run() error = %v, want ErrCompensation", err)
	}

	var comp *apperrors.CompensationError
	if !errors.As(err, &comp) {
		t.Fatalf("Run() error = %v, want CompensationError", err)
	}
	if comp.Cause == nil || comp.Rollback == nil {
		t.Errorf("compensation error must carry both failures: %+v", comp)
	}
}

type failingApplier struct{}

func (failingApplier) Apply(context.Context, *api.Event) (*ticket, error) {
	return nil, errors.New("replay failed")
}

type failingLog struct{}

func (failingLog) Append(context.Context, *api.Event) (*api.Event, error) {
	return nil, errors.New("broker down")
}

func (failingLog) Events(context.Context, api.AggregateRef) ([]*api.Event, error) {
	return nil, errors.New("broker down")
}

// flakyRepo lets the first Save (the optimistic write) through and fails
// the second (the rollback).
type flakyRepo struct {
	snapshot.Repository[*ticket]
	failAfter int
	saves     int
}

func (r *flakyRepo) Save(ctx context.Context, tk *ticket) error {
	r.saves++
	if r.saves > r.failAfter {
		return errors.New("kv down")
	}
	return r.Repository.Save(ctx, tk)
}
