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
	"sort"
	"sync"

	"github.com/aggrestream/aggrestream/api"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and the monolith harness.
type Memory struct {
	mu     sync.RWMutex
	logs   map[api.AggregateRef][]*api.Event
	byID   map[string]*api.Event
	nextSq map[api.AggregateRef]uint64
}

func NewMemory() *Memory {
	return &Memory{
		logs:   make(map[api.AggregateRef][]*api.Event),
		byID:   make(map[string]*api.Event),
		nextSq: make(map[api.AggregateRef]uint64),
	}
}

// Append stores a copy of the event and assigns its sequence. Duplicate
// event IDs return the previously stored copy.
func (m *Memory) Append(ctx context.Context, event *api.Event) (*api.Event, error) {
	if event == nil || !event.Aggregate.Valid() {
		return nil, errInvalidAppend(event)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byID[event.ID]; ok {
		out := *existing
		return &out, nil
	}

	m.nextSq[event.Aggregate]++
	stored := *event
	stored.Sequence = m.nextSq[event.Aggregate]

	m.logs[event.Aggregate] = append(m.logs[event.Aggregate], &stored)
	m.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

// Events returns copies of the aggregate's full log in replay order.
func (m *Memory) Events(ctx context.Context, ref api.AggregateRef) ([]*api.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	log := m.logs[ref]
	out := make([]*api.Event, 0, len(log))
	for _, e := range log {
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
