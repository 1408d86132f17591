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

// Package eventlog provides the append-only event log store: the single
// durable source of truth every aggregate's state is derived from.
package eventlog

import (
	"context"
	"fmt"

	"github.com/aggrestream/aggrestream/api"
)

// Store is the append-only event log for aggregate instances.
//
// Append is idempotent per event ID: re-appending an already stored event
// returns the stored copy without growing the log. Events returns the full
// ordered log for one aggregate, creation time ascending with the store's
// assigned sequence as tie-break. No update, no delete.
type Store interface {
	Append(ctx context.Context, event *api.Event) (*api.Event, error)
	Events(ctx context.Context, ref api.AggregateRef) ([]*api.Event, error)
}

func errInvalidAppend(event *api.Event) error {
	if event == nil {
		return fmt.Errorf("append: nil event")
	}
	return fmt.Errorf("append: event %s has no aggregate reference", event.ID)
}
