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
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
)

var _ Repository[fsm.Aggregate] = (*KV[fsm.Aggregate])(nil)

// KV is the durable Repository over a JetStream key-value bucket, one
// bucket per aggregate type, keyed by aggregate ID.
type KV[A fsm.Aggregate] struct {
	conn   *jetstreamx.Connection
	bucket string
	conv   serde.BinarySerde
	fresh  func() A
}

func NewKV[A fsm.Aggregate](conn *jetstreamx.Connection, aggregate api.AggregateType, conv serde.BinarySerde, fresh func() A) *KV[A] {
	return &KV[A]{
		conn:   conn,
		bucket: fmt.Sprintf(api.SnapshotBucketPattern, aggregate),
		conv:   conv,
		fresh:  fresh,
	}
}

func (k *KV[A]) Load(ctx context.Context, id string) (A, error) {
	aggregate := k.fresh()
	entry, err := k.conn.Get(ctx, k.bucket, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return aggregate, ErrNotFound
		}
		return aggregate, fmt.Errorf("snapshot load %s/%s: %w", k.bucket, id, err)
	}
	if err := k.conv.DeserializeBinary(entry.Value(), aggregate); err != nil {
		return aggregate, fmt.Errorf("snapshot decode %s/%s: %w", k.bucket, id, err)
	}
	return aggregate, nil
}

func (k *KV[A]) Delete(ctx context.Context, id string) error {
	if err := k.conn.Delete(ctx, k.bucket, id); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("snapshot delete %s/%s: %w", k.bucket, id, err)
	}
	return nil
}

func (k *KV[A]) Save(ctx context.Context, aggregate A) error {
	data, err := k.conv.SerializeBinary(aggregate)
	if err != nil {
		return fmt.Errorf("snapshot encode %s/%s: %w", k.bucket, aggregate.AggregateID(), err)
	}
	if _, err := k.conn.Set(ctx, k.bucket, aggregate.AggregateID(), data); err != nil {
		return fmt.Errorf("snapshot save %s/%s: %w", k.bucket, aggregate.AggregateID(), err)
	}
	return nil
}
