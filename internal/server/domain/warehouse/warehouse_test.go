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

package warehouse

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

func newWarehouseService(t *testing.T) *Service {
	t.Helper()
	conv := &serde.JsonSerde{}
	svc, err := NewService(eventlog.NewMemory(), snapshot.NewMemory(conv, New), nil, conv, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestWarehouseConnectsManyInventories(t *testing.T) {
	ctx := context.Background()
	svc := newWarehouseService(t)

	if _, err := svc.Create(ctx, "w-1", "east-1"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Connecting stays in the connected state, so a warehouse can host
	// any number of inventories. Reconnecting the same one is a no-op.
	for _, inv := range []string{"inv-1", "inv-2", "inv-1"} {
		if _, err := svc.ConnectInventory(ctx, "w-1", inv); err != nil {
			t.Fatalf("ConnectInventory(%s) error = %v", inv, err)
		}
	}

	w, err := svc.Decommission(ctx, "w-1")
	if err != nil {
		t.Fatalf("Decommission() error = %v", err)
	}
	if w.Status != StatusDecommissioned {
		t.Errorf("status = %s, want %s", w.Status, StatusDecommissioned)
	}
	if len(w.InventoryIDs) != 2 {
		t.Errorf("InventoryIDs = %v, want two distinct entries", w.InventoryIDs)
	}
}

func TestWarehouseDecommissionedIsTerminal(t *testing.T) {
	ctx := context.Background()
	svc := newWarehouseService(t)

	if _, err := svc.Create(ctx, "w-1", "east-1"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Decommission(ctx, "w-1"); err != nil {
		t.Fatalf("Decommission() error = %v", err)
	}

	if _, err := svc.ConnectInventory(ctx, "w-1", "inv-1"); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Errorf("ConnectInventory() error = %v, want ErrIllegalState", err)
	}
}
