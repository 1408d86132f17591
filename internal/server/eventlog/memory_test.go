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
	"testing"
	"time"

	"github.com/aggrestream/aggrestream/api"
)

func TestMemoryAppendAssignsSequence(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ref := api.NewRef(api.AggregateOrder, "o-1")

	first, err := store.Append(ctx, api.NewEvent(ref, "order/created", nil))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second, err := store.Append(ctx, api.NewEvent(ref, "order/account-connected", nil))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if first.Sequence != 1 || second.Sequence != 2 {
		t.Errorf("sequences = %d, %d; want 1, 2", first.Sequence, second.Sequence)
	}
}

func TestMemoryAppendIsIdempotentPerEventID(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ref := api.NewRef(api.AggregateInventory, "inv-1")
	event := api.NewEvent(ref, "inventory/created", nil)

	if _, err := store.Append(ctx, event); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	dup, err := store.Append(ctx, event)
	if err != nil {
		t.Fatalf("Append() duplicate error = %v", err)
	}

	log, err := store.Events(ctx, ref)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("log length = %d after duplicate append, want 1", len(log))
	}
	if dup.Sequence != log[0].Sequence {
		t.Errorf("duplicate append returned sequence %d, stored %d", dup.Sequence, log[0].Sequence)
	}
}

func TestMemoryEventsOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	ref := api.NewRef(api.AggregatePayment, "p-1")
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Append out of creation order; equal timestamps fall back to the
	// store-assigned sequence.
	mk := func(id string, at time.Time) *api.Event {
		e := api.NewEvent(ref, "payment/created", nil)
		e.ID = id
		e.CreatedAt = at
		return e
	}
	for _, e := range []*api.Event{
		mk("e-late", base.Add(2*time.Second)),
		mk("e-early", base),
		mk("e-tie-a", base.Add(time.Second)),
		mk("e-tie-b", base.Add(time.Second)),
	} {
		if _, err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s) error = %v", e.ID, err)
		}
	}

	log, err := store.Events(ctx, ref)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}

	want := []string{"e-early", "e-tie-a", "e-tie-b", "e-late"}
	if len(log) != len(want) {
		t.Fatalf("log length = %d, want %d", len(log), len(want))
	}
	for i, id := range want {
		if log[i].ID != id {
			t.Errorf("log[%d] = %s, want %s", i, log[i].ID, id)
		}
	}
}
