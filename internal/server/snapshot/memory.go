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

package snapshot

import (
	"context"
	"sync"

	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

var _ Repository[fsm.Aggregate] = (*Memory[fsm.Aggregate])(nil)

// Memory is the in-process Repository used by tests and ACID-mode runs
// without a broker. Entries are stored encoded so every Load hands out an
// independent copy.
type Memory[A fsm.Aggregate] struct {
	mu      sync.RWMutex
	entries map[string][]byte
	conv    serde.BinarySerde
	fresh   func() A
}

func NewMemory[A fsm.Aggregate](conv serde.BinarySerde, fresh func() A) *Memory[A] {
	return &Memory[A]{
		entries: make(map[string][]byte),
		conv:    conv,
		fresh:   fresh,
	}
}

func (m *Memory[A]) Load(_ context.Context, id string) (A, error) {
	m.mu.RLock()
	data, ok := m.entries[id]
	m.mu.RUnlock()

	aggregate := m.fresh()
	if !ok {
		return aggregate, ErrNotFound
	}
	if err := m.conv.DeserializeBinary(data, aggregate); err != nil {
		return aggregate, err
	}
	return aggregate, nil
}

func (m *Memory[A]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory[A]) Save(_ context.Context, aggregate A) error {
	data, err := m.conv.SerializeBinary(aggregate)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[aggregate.AggregateID()] = data
	m.mu.Unlock()
	return nil
}
