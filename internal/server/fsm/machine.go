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

package fsm

import (
	"context"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
)

// ReplayContext carries the in-progress snapshot through one replay.
// Trigger is set only while the machine folds the event that initiated
// the replay, so a wired ActionFunc can observe emission-time attributes.
type ReplayContext[A Aggregate] struct {
	Snapshot A
	Trigger  *api.Event
}

// Machine is one ephemeral state machine instance. It is created, fed a
// whole replay sequence, read and discarded within a single logical
// operation; it is never shared across goroutines.
type Machine[A Aggregate] struct {
	def    *Definition[A]
	conv   serde.BinarySerde
	status Status
	rc     ReplayContext[A]
}

// Start creates a machine in the initial state around a fresh snapshot.
func (d *Definition[A]) Start(snapshot A, conv serde.BinarySerde) *Machine[A] {
	snapshot.SetStatus(Initial)
	return &Machine[A]{
		def:    d,
		conv:   conv,
		status: Initial,
		rc:     ReplayContext[A]{Snapshot: snapshot},
	}
}

// Handle folds one event: looks up the transition, advances the status,
// applies the event's attributes to the snapshot and, when the event is
// the replay trigger, runs the transition's wired action.
func (m *Machine[A]) Handle(ctx context.Context, event *api.Event, trigger bool) error {
	tr, ok := m.def.transition(m.status, event.Type)
	if !ok {
		return &UndefinedTransitionError{Aggregate: m.def.aggregate, From: m.status, On: event.Type}
	}

	m.status = tr.To
	m.rc.Snapshot.SetStatus(tr.To)
	if err := m.rc.Snapshot.Apply(m.conv, event); err != nil {
		return err
	}

	if trigger {
		m.rc.Trigger = event
		defer func() { m.rc.Trigger = nil }()
		if tr.Action != nil {
			return tr.Action(ctx, &m.rc)
		}
	}
	return nil
}

// Status returns the machine's current state.
func (m *Machine[A]) Status() Status {
	return m.status
}

// Snapshot returns the folded aggregate.
func (m *Machine[A]) Snapshot() A {
	return m.rc.Snapshot
}

// Stop clears the replay context. The machine must not be reused.
func (m *Machine[A]) Stop() {
	m.rc = ReplayContext[A]{}
}
