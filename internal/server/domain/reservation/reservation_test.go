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

package reservation

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

func newReservationService(t *testing.T) *Service {
	t.Helper()
	conv := &serde.JsonSerde{}
	svc, err := NewService(eventlog.NewMemory(), snapshot.NewMemory(conv, New), nil, conv, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestReservationConfirm(t *testing.T) {
	ctx := context.Background()
	svc := newReservationService(t)

	r, err := svc.Create(ctx, "r-1", "o-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.Status != StatusCreated || r.OrderID != "o-1" {
		t.Errorf("reservation = %+v", r)
	}

	if _, err := svc.ConnectOrder(ctx, "r-1", "o-1"); err != nil {
		t.Fatalf("ConnectOrder() error = %v", err)
	}
	r, err = svc.Confirm(ctx, "r-1")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if r.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", r.Status, StatusConfirmed)
	}

	// A confirmed hold cannot be released anymore.
	if _, err := svc.Release(ctx, "r-1"); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Errorf("Release() error = %v, want ErrIllegalState", err)
	}
}

func TestReservationReleaseBeforeOrderConnect(t *testing.T) {
	ctx := context.Background()
	svc := newReservationService(t)

	if _, err := svc.Create(ctx, "r-1", "o-1"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Release is only reachable once the order is connected.
	if _, err := svc.Release(ctx, "r-1"); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Errorf("Release() error = %v, want ErrIllegalState", err)
	}
}
