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

// Package snapshot persists aggregate attribute snapshots. A snapshot is
// a projection of the event log, never the source of truth: the action
// layer reads and rolls back against it, and the ingestion path refreshes
// it after every replay.
package snapshot

import (
	"context"
	"errors"

	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

// ErrNotFound indicates the aggregate has no persisted snapshot yet.
var ErrNotFound = errors.New("snapshot not found")

// Repository stores one aggregate type's snapshots keyed by aggregate ID.
type Repository[A fsm.Aggregate] interface {
	// Load returns a private copy; mutating it never affects the store.
	Load(ctx context.Context, id string) (A, error)
	Save(ctx context.Context, aggregate A) error
	// Delete removes the snapshot; rolling back a failed genesis action
	// uses this. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error
}
