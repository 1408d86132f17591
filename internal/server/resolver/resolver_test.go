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

package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/aggrestream/aggrestream/api"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
)

func TestRegistryResolve(t *testing.T) {
	ctx := context.Background()
	store := eventlog.NewMemory()
	registry := NewRegistry()
	registry.Bind(api.AggregateOrder, store)

	ref := api.NewRef(api.AggregateOrder, "o-1")
	if _, err := store.Append(ctx, api.NewEvent(ref, "order/created", nil)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	log, err := registry.Resolve(ctx, ref.Locator())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if log.Ref() != ref {
		t.Errorf("Ref() = %v, want %v", log.Ref(), ref)
	}
	events, err := log.Events(ctx)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Events() returned %d events, want 1", len(events))
	}
}

func TestRegistryResolveFailures(t *testing.T) {
	registry := NewRegistry()
	registry.Bind(api.AggregateOrder, eventlog.NewMemory())

	tests := []struct {
		name    string
		locator string
	}{
		{name: "malformed locator", locator: "http://order/o-1"},
		{name: "missing id", locator: "aggrestream://order"},
		{name: "unregistered type", locator: "aggrestream://payment/p-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Resolve(context.Background(), tt.locator)
			if !errors.Is(err, apperrors.ErrInvalidEvent) {
				t.Errorf("Resolve(%q) error = %v, want ErrInvalidEvent", tt.locator, err)
			}
		})
	}
}
