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

// Package replication derives aggregate snapshots from event logs. Apply
// is a pure function of the full ordered log, which is what makes
// at-least-once delivery safe: re-applying any event replays the same
// history into the same snapshot.
package replication

import (
	"context"
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	"github.com/aggrestream/aggrestream/internal/server/resolver"
)

// Engine replays one aggregate type. Fresh produces an empty snapshot for
// each replay; the definition's transition table drives the fold.
type Engine[A fsm.Aggregate] struct {
	def      *fsm.Definition[A]
	resolver resolver.Resolver
	conv     serde.BinarySerde
	fresh    func() A
	logger   *slog.Logger
}

func NewEngine[A fsm.Aggregate](
	def *fsm.Definition[A],
	res resolver.Resolver,
	conv serde.BinarySerde,
	fresh func() A,
	logger *slog.Logger,
) *Engine[A] {
	return &Engine[A]{
		def:      def,
		resolver: res,
		conv:     conv,
		fresh:    fresh,
		logger:   logger.With("aggregate_type", def.AggregateType().String()),
	}
}

// Apply replays the triggering event's aggregate from its first event and
// returns the resulting snapshot. The trigger must already be appended to
// the log; delivery order and delivery count do not affect the result.
//
// Transition actions wired in the definition run only while the machine
// folds the trigger itself, so historical events replayed on the way to
// it stay side-effect free.
func (e *Engine[A]) Apply(ctx context.Context, event *api.Event) (A, error) {
	var zero A
	if event == nil {
		return zero, apperrors.NewInvalidEvent("", "nil event")
	}
	if !event.Aggregate.Valid() {
		return zero, apperrors.NewInvalidEvent(event.ID, "event has no aggregate reference")
	}
	if event.Aggregate.Type != e.def.AggregateType() {
		return zero, apperrors.NewInvalidEvent(event.ID,
			"aggregate type "+event.Aggregate.Type.String()+" is not handled by this engine")
	}

	log, err := e.resolver.Resolve(ctx, event.Aggregate.Locator())
	if err != nil {
		return zero, err
	}
	events, err := log.Events(ctx)
	if err != nil {
		return zero, err
	}
	if len(events) == 0 {
		return zero, apperrors.NewInvalidEvent(event.ID, "aggregate "+event.Aggregate.Locator()+" has no event log")
	}

	machine := e.def.Start(e.fresh(), e.conv)
	defer machine.Stop()

	triggered := false
	for _, stored := range events {
		trigger := stored.ID == event.ID
		triggered = triggered || trigger
		if err := machine.Handle(ctx, stored, trigger); err != nil {
			return zero, err
		}
	}
	if !triggered {
		return zero, apperrors.NewInvalidEvent(event.ID, "event is not in the aggregate's log")
	}

	e.logger.DebugContext(ctx, "replayed aggregate",
		"aggregate_id", event.Aggregate.ID,
		"events", len(events),
		"trigger", event.ID,
		"status", machine.Status().String(),
	)
	return machine.Snapshot(), nil
}
