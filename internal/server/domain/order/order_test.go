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

package order

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

func newTestService(t *testing.T, log eventlog.Store) *Service {
	t.Helper()
	conv := &serde.JsonSerde{}
	repo := snapshot.NewMemory(conv, New)
	svc, err := NewService(log, repo, nil, conv, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemory()
	svc := newTestService(t, log)

	items := []LineItem{{SKU: "sku-1", Quantity: 2}}
	o, err := svc.Create(ctx, "o-1", items, "1 Main St")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if o.Status != StatusCreated {
		t.Errorf("status = %s, want %s", o.Status, StatusCreated)
	}

	o, err = svc.ConnectAccount(ctx, "o-1", "acc-42")
	if err != nil {
		t.Fatalf("ConnectAccount() error = %v", err)
	}
	if o.Status != StatusAccountConnected {
		t.Errorf("status = %s, want %s", o.Status, StatusAccountConnected)
	}
	if o.AccountID != "acc-42" {
		t.Errorf("AccountID = %s, want acc-42", o.AccountID)
	}

	o, err = svc.ConnectPayment(ctx, "o-1", "pay-7")
	if err != nil {
		t.Fatalf("ConnectPayment() error = %v", err)
	}
	o, err = svc.Fulfill(ctx, "o-1")
	if err != nil {
		t.Fatalf("Fulfill() error = %v", err)
	}
	if o.Status != StatusFulfilled {
		t.Errorf("status = %s, want %s", o.Status, StatusFulfilled)
	}

	events, err := log.Events(ctx, api.NewRef(api.AggregateOrder, "o-1"))
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	wantTypes := []api.EventType{EventCreated, EventAccountConnected, EventPaymentConnected, EventFulfilled}
	if len(events) != len(wantTypes) {
		t.Fatalf("log length = %d, want %d", len(events), len(wantTypes))
	}
	for i, et := range wantTypes {
		if events[i].Type != et {
			t.Errorf("log[%d] = %s, want %s", i, events[i].Type, et)
		}
	}

	// The account connection payload carries the emission-time attribute.
	var p AccountConnectedPayload
	if err := (&serde.JsonSerde{}).DeserializeBinary(events[1].Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.AccountID != "acc-42" {
		t.Errorf("payload AccountID = %s, want acc-42", p.AccountID)
	}
}

func TestOrderActionPreconditions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, eventlog.NewMemory())

	if _, err := svc.Create(ctx, "o-1", nil, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "fulfill before payment",
			run: func() error {
				_, err := svc.Fulfill(ctx, "o-1")
				return err
			},
		},
		{
			name: "connect payment before account",
			run: func() error {
				_, err := svc.ConnectPayment(ctx, "o-1", "pay-1")
				return err
			},
		},
		{
			name: "create twice",
			run: func() error {
				_, err := svc.Create(ctx, "o-1", nil, "")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, apperrors.ErrIllegalState) {
				t.Errorf("error = %v, want ErrIllegalState", err)
			}
		})
	}
}

func TestOrderReplayMatchesActionResult(t *testing.T) {
	ctx := context.Background()
	log := eventlog.NewMemory()
	svc := newTestService(t, log)

	if _, err := svc.Create(ctx, "o-1", []LineItem{{SKU: "sku-9", Quantity: 1}}, "2 Side St"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	acted, err := svc.ConnectAccount(ctx, "o-1", "acc-1")
	if err != nil {
		t.Fatalf("ConnectAccount() error = %v", err)
	}

	// Fold the log by hand through the table; the derived state must
	// match what the action layer reported.
	def, err := Definition()
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}
	events, err := log.Events(ctx, api.NewRef(api.AggregateOrder, "o-1"))
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	m := def.Start(New(), &serde.JsonSerde{})
	for _, e := range events {
		if err := m.Handle(ctx, e, false); err != nil {
			t.Fatalf("Handle(%s) error = %v", e.Type, err)
		}
	}

	replayed := m.Snapshot()
	if replayed.Status != acted.Status || replayed.AccountID != acted.AccountID {
		t.Errorf("replayed = %+v, acted = %+v", replayed, acted)
	}
	if replayed.ShippingAddress != "2 Side St" || len(replayed.Items) != 1 {
		t.Errorf("replayed attributes = %+v", replayed)
	}
}
