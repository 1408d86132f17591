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

// Package fsm holds the per-aggregate-type state machine definitions and
// the ephemeral machines the replication engine replays through. A
// Definition is built once at startup from a declarative transition table
// and is read-only afterwards; a Machine lives for exactly one replay.
package fsm

import (
	"context"
	"fmt"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
)

// Status is one state in an aggregate's lifecycle enumeration.
type Status string

func (s Status) String() string { return string(s) }

// Initial is the pseudo-state every aggregate occupies before its genesis
// event.
const Initial Status = ""

// Aggregate is the snapshot a machine folds events into.
type Aggregate interface {
	AggregateID() string
	CurrentStatus() Status
	SetStatus(Status)
	// Apply folds one event's emission-time attributes into the
	// snapshot. Status is handled by the machine, not here.
	Apply(conv serde.BinarySerde, event *api.Event) error
}

// ActionFunc is a side effect wired to a transition. It runs only when
// the transition is fed by the event that triggered the replay, and it
// can observe that event through the replay context.
type ActionFunc[A Aggregate] func(ctx context.Context, rc *ReplayContext[A]) error

// Transition is one row of the declarative table: in state From, event
// On moves the aggregate to To, optionally running Action.
type Transition[A Aggregate] struct {
	From   Status
	On     api.EventType
	To     Status
	Action ActionFunc[A]
}

// Definition is the immutable transition table for one aggregate type.
// Concurrency-safe by construction: read-only after NewDefinition.
type Definition[A Aggregate] struct {
	aggregate api.AggregateType
	table     map[Status]map[api.EventType]Transition[A]
}

// NewDefinition validates and indexes a transition table. Undefined or
// contradictory rows are a configuration error at startup, never at
// replay time.
func NewDefinition[A Aggregate](aggregate api.AggregateType, transitions []Transition[A]) (*Definition[A], error) {
	if aggregate == "" {
		return nil, fmt.Errorf("fsm: aggregate type is required")
	}
	if len(transitions) == 0 {
		return nil, fmt.Errorf("fsm %s: empty transition table", aggregate)
	}

	table := make(map[Status]map[api.EventType]Transition[A])
	genesis := false
	for _, tr := range transitions {
		if tr.On == "" {
			return nil, fmt.Errorf("fsm %s: transition from %q has no event type", aggregate, tr.From)
		}
		if tr.To == Initial {
			return nil, fmt.Errorf("fsm %s: transition on %q targets the initial pseudo-state", aggregate, tr.On)
		}
		if tr.From == Initial {
			genesis = true
		}
		row, ok := table[tr.From]
		if !ok {
			row = make(map[api.EventType]Transition[A])
			table[tr.From] = row
		}
		if _, dup := row[tr.On]; dup {
			return nil, fmt.Errorf("fsm %s: duplicate transition (%q, %q)", aggregate, tr.From, tr.On)
		}
		row[tr.On] = tr
	}
	if !genesis {
		return nil, fmt.Errorf("fsm %s: no genesis transition from the initial state", aggregate)
	}

	return &Definition[A]{aggregate: aggregate, table: table}, nil
}

// AggregateType returns the aggregate type this definition governs.
func (d *Definition[A]) AggregateType() api.AggregateType {
	return d.aggregate
}

func (d *Definition[A]) transition(from Status, on api.EventType) (Transition[A], bool) {
	row, ok := d.table[from]
	if !ok {
		return Transition[A]{}, false
	}
	tr, ok := row[on]
	return tr, ok
}

// Permits reports whether the given event type is legal in the given
// status. The action layer uses this for precondition checks.
func (d *Definition[A]) Permits(from Status, on api.EventType) bool {
	_, ok := d.transition(from, on)
	return ok
}

// Next returns the status the given event type leads to from the given
// status, and whether such a transition exists.
func (d *Definition[A]) Next(from Status, on api.EventType) (Status, bool) {
	tr, ok := d.transition(from, on)
	return tr.To, ok
}

// UndefinedTransitionError reports a replayed event that has no row in
// the table. Reaching this during replay means the log and the table
// disagree, which is a deployment bug, not a business rejection.
type UndefinedTransitionError struct {
	Aggregate api.AggregateType
	From      Status
	On        api.EventType
}

func (e *UndefinedTransitionError) Error() string {
	return fmt.Sprintf("fsm %s: no transition from %q on %q", e.Aggregate, e.From, e.On)
}
