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

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/aggrestream/aggrestream/api"
)

// eventsDuplicateWindow bounds message-ID dedup on the history stream.
// Chained emissions reuse deterministic IDs, so the window must outlast
// any redelivery backoff a triggering event can see.
const eventsDuplicateWindow = 2 * time.Hour

func (m *Manager) ensureStreams(ctx context.Context) error {
	// One history stream carries every aggregate's events; replicators
	// filter by aggregate type subject.
	_, err := m.conn.EnsureStream(ctx, jetstream.StreamConfig{
		Name:       api.EventsStream,
		Subjects:   []string{api.EventsFilterSubjectPattern},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: eventsDuplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure aggregate events stream: %w", err)
	}
	return nil
}

func (m *Manager) ensureKV(ctx context.Context) error {
	for _, t := range api.AggregateTypes {
		_, err := m.conn.EnsureKV(ctx, jetstream.KeyValueConfig{
			Bucket: fmt.Sprintf(api.SnapshotBucketPattern, t),
		})
		if err != nil {
			return fmt.Errorf("failed to ensure snapshot bucket for %s: %w", t, err)
		}
	}
	return nil
}
