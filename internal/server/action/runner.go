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

// Package action executes aggregate commands: precondition check against
// the transition table, optimistic snapshot mutation, event emission, and
// compensating rollback when emission fails. The event log stays the
// source of truth; the snapshot repository is only the action layer's
// working view.
package action

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// Applier replays an appended event into a snapshot inline. Wired only in
// ACID mode; in BASE mode the ingestion stream replays instead.
type Applier[A fsm.Aggregate] interface {
	Apply(ctx context.Context, event *api.Event) (A, error)
}

// Request describes one action invocation.
type Request[A fsm.Aggregate] struct {
	Ref  api.AggregateRef
	Name string
	// Event is the domain event this action emits on success.
	Event api.EventType
	// Payload carries the event's emission-time attributes; nil for
	// actions without arguments.
	Payload any
	// Mutate applies the action's attribute change to the working copy.
	// It runs after the precondition check and may be nil.
	Mutate func(A) error
}

// Runner executes actions for one aggregate type.
type Runner[A fsm.Aggregate] struct {
	def     *fsm.Definition[A]
	log     eventlog.Store
	repo    snapshot.Repository[A]
	applier Applier[A]
	conv    serde.BinarySerde
	fresh   func() A
	logger  *slog.Logger
}

func NewRunner[A fsm.Aggregate](
	def *fsm.Definition[A],
	log eventlog.Store,
	repo snapshot.Repository[A],
	applier Applier[A],
	conv serde.BinarySerde,
	fresh func() A,
	logger *slog.Logger,
) *Runner[A] {
	return &Runner[A]{
		def:     def,
		log:     log,
		repo:    repo,
		applier: applier,
		conv:    conv,
		fresh:   fresh,
		logger:  logger.With("aggregate_type", def.AggregateType().String()),
	}
}

// Run executes one action following mutate, persist, emit. On emission
// failure the persisted snapshot is rolled back to its pre-action state;
// a rollback that itself fails surfaces as a compensation error and the
// aggregate instance must be repaired from its log.
func (r *Runner[A]) Run(ctx context.Context, req Request[A]) (A, error) {
	var zero A
	if !req.Ref.Valid() {
		return zero, apperrors.NewInvalidEvent("", "action "+req.Name+": incomplete aggregate reference")
	}

	prev, err := r.repo.Load(ctx, req.Ref.ID)
	if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
		return zero, apperrors.NewLogUnavailable(req.Ref, err)
	}

	next, ok := r.def.Next(prev.CurrentStatus(), req.Event)
	if !ok {
		return zero, apperrors.NewIllegalState(req.Ref, req.Name, prev.CurrentStatus().String())
	}

	work, err := r.clone(prev)
	if err != nil {
		return zero, err
	}
	if req.Mutate != nil {
		if err := req.Mutate(work); err != nil {
			return zero, err
		}
	}
	work.SetStatus(next)

	if err := r.repo.Save(ctx, work); err != nil {
		return zero, apperrors.NewLogUnavailable(req.Ref, err)
	}

	var payload []byte
	if req.Payload != nil {
		payload, err = r.conv.SerializeBinary(req.Payload)
		if err != nil {
			return zero, err
		}
	}

	appended, err := r.log.Append(ctx, api.NewEvent(req.Ref, req.Event, payload))
	if err != nil {
		return zero, r.compensate(ctx, req, prev, apperrors.NewLogUnavailable(req.Ref, err))
	}

	r.logger.InfoContext(ctx, "action applied",
		"action", req.Name,
		"aggregate_id", req.Ref.ID,
		"event_type", req.Event.String(),
		"event_id", appended.ID,
		"status", next.String(),
	)

	if r.applier == nil {
		return work, nil
	}
	return r.applyInline(ctx, req, prev, appended)
}

// applyInline is the ACID path: replay the log through the appended event
// and persist the derived snapshot before replying. A failed replay rolls
// the persisted snapshot back just like a failed append.
func (r *Runner[A]) applyInline(ctx context.Context, req Request[A], prev A, appended *api.Event) (A, error) {
	var zero A
	snap, err := r.applier.Apply(ctx, appended)
	if err != nil {
		return zero, r.compensate(ctx, req, prev, err)
	}
	if err := r.repo.Save(ctx, snap); err != nil {
		return zero, apperrors.NewLogUnavailable(req.Ref, err)
	}
	return snap, nil
}

// compensate restores the pre-action snapshot after a failed emission and
// surfaces emitErr. A failed genesis action deletes the optimistic
// snapshot instead, since there is no prior state to restore.
func (r *Runner[A]) compensate(ctx context.Context, req Request[A], prev A, emitErr error) error {
	restore := func() error { return r.repo.Save(ctx, prev) }
	if prev.AggregateID() == "" {
		restore = func() error { return r.repo.Delete(ctx, req.Ref.ID) }
	}
	if rbErr := restore(); rbErr != nil {
		r.logger.ErrorContext(ctx, "rollback failed, snapshot diverged from log",
			"action", req.Name,
			"aggregate_id", req.Ref.ID,
			"cause", emitErr,
			"rollback_error", rbErr,
		)
		return apperrors.NewCompensation(req.Ref, emitErr, rbErr)
	}

	r.logger.WarnContext(ctx, "action rolled back",
		"action", req.Name,
		"aggregate_id", req.Ref.ID,
		"cause", emitErr,
	)
	return emitErr
}

func (r *Runner[A]) clone(aggregate A) (A, error) {
	var zero A
	data, err := r.conv.SerializeBinary(aggregate)
	if err != nil {
		return zero, err
	}
	dup := r.fresh()
	if err := r.conv.DeserializeBinary(data, dup); err != nil {
		return zero, err
	}
	return dup, nil
}
