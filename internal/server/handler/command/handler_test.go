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

package command

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
)

func commandMsg(t *testing.T, cmd api.Command) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	return &nats.Msg{Subject: "command.order.create", Data: data}
}

func TestHandlerDispatchesRegisteredAction(t *testing.T) {
	h := NewHandler(&serde.JsonSerde{}, slog.New(slog.DiscardHandler))

	var got *api.Command
	h.Register(api.AggregateOrder, "create", func(_ context.Context, cmd *api.Command) ([]byte, error) {
		got = cmd
		return []byte(`{}`), nil
	})

	h.HandleRequest(context.Background(), commandMsg(t, api.Command{
		Aggregate:   api.AggregateOrder,
		Action:      "create",
		AggregateID: "o-1",
	}))

	if got == nil {
		t.Fatal("registered action was not invoked")
	}
	if got.AggregateID != "o-1" {
		t.Errorf("AggregateID = %s, want o-1", got.AggregateID)
	}
}

func TestHandlerPassesProcessorContext(t *testing.T) {
	h := NewHandler(&serde.JsonSerde{}, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	h.Register(api.AggregateOrder, "create", func(ctx context.Context, _ *api.Command) ([]byte, error) {
		gotErr = ctx.Err()
		return []byte(`{}`), nil
	})

	h.HandleRequest(ctx, commandMsg(t, api.Command{Aggregate: api.AggregateOrder, Action: "create"}))

	if !errors.Is(gotErr, context.Canceled) {
		t.Errorf("action context error = %v, want context.Canceled", gotErr)
	}
}

func TestHandlerUnknownActionDoesNotPanic(t *testing.T) {
	h := NewHandler(&serde.JsonSerde{}, slog.New(slog.DiscardHandler))
	h.HandleRequest(context.Background(), commandMsg(t, api.Command{Aggregate: api.AggregatePayment, Action: "missing"}))
}

func TestHandlerDuplicateRegistrationPanics(t *testing.T) {
	h := NewHandler(&serde.JsonSerde{}, slog.New(slog.DiscardHandler))
	fn := func(context.Context, *api.Command) ([]byte, error) { return nil, nil }

	h.Register(api.AggregateOrder, "create", fn)
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	h.Register(api.AggregateOrder, "create", fn)
}
