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

// Package resolver turns opaque aggregate locators into read views over
// the owning event log. Consumers hold locators, never live aggregates;
// this is the only way from a locator to the aggregate's history.
package resolver

import (
	"context"

	"github.com/aggrestream/aggrestream/api"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
)

// Log is a read view over one aggregate instance's event log.
type Log interface {
	Ref() api.AggregateRef
	Events(ctx context.Context) ([]*api.Event, error)
}

// Resolver resolves an "aggrestream://<type>/<id>" locator to the log
// view of the aggregate it names.
type Resolver interface {
	Resolve(ctx context.Context, locator string) (Log, error)
}

// Registry maps aggregate types to their backing log store. The zero
// value is unusable; build with NewRegistry and Bind before serving.
type Registry struct {
	stores map[api.AggregateType]eventlog.Store
}

var _ Resolver = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{stores: make(map[api.AggregateType]eventlog.Store)}
}

// Bind registers the store owning the given aggregate type.
func (r *Registry) Bind(t api.AggregateType, store eventlog.Store) {
	r.stores[t] = store
}

// Resolve parses the locator and binds it to the owning store. A
// malformed locator or an unregistered type is an invalid event cause,
// never a transient one.
func (r *Registry) Resolve(_ context.Context, locator string) (Log, error) {
	ref, err := api.ParseLocator(locator)
	if err != nil {
		return nil, apperrors.NewInvalidEvent(locator, err.Error())
	}
	store, ok := r.stores[ref.Type]
	if !ok {
		return nil, apperrors.NewInvalidEvent(locator, "no log store for aggregate type "+ref.Type.String())
	}
	return &boundLog{ref: ref, store: store}, nil
}

// boundLog fixes a store lookup to one aggregate reference.
type boundLog struct {
	ref   api.AggregateRef
	store eventlog.Store
}

func (l *boundLog) Ref() api.AggregateRef { return l.ref }

func (l *boundLog) Events(ctx context.Context) ([]*api.Event, error) {
	events, err := l.store.Events(ctx, l.ref)
	if err != nil {
		return nil, apperrors.NewLogUnavailable(l.ref, err)
	}
	return events, nil
}
