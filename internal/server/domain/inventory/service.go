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

package inventory

import (
	"context"
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// ReservationCreator creates a reservation in the reservation service.
// The inventory service never holds the reservation aggregate itself.
type ReservationCreator interface {
	CreateReservation(ctx context.Context, orderID string) (string, error)
}

// Service exposes the inventory actions.
type Service struct {
	runner       *action.Runner[*Inventory]
	reservations ReservationCreator
	logger       *slog.Logger
}

func NewService(
	log eventlog.Store,
	repo snapshot.Repository[*Inventory],
	applier action.Applier[*Inventory],
	reservations ReservationCreator,
	conv serde.BinarySerde,
	logger *slog.Logger,
) (*Service, error) {
	def, err := Definition(log, conv)
	if err != nil {
		return nil, err
	}
	return &Service{
		runner:       action.NewRunner(def, log, repo, applier, conv, New, logger),
		reservations: reservations,
		logger:       logger,
	}, nil
}

func (s *Service) ref(id string) api.AggregateRef {
	return api.NewRef(api.AggregateInventory, id)
}

func (s *Service) Create(ctx context.Context, id, sku string) (*Inventory, error) {
	return s.runner.Run(ctx, action.Request[*Inventory]{
		Ref:     s.ref(id),
		Name:    ActionCreate,
		Event:   EventCreated,
		Payload: CreatedPayload{SKU: sku},
		Mutate: func(i *Inventory) error {
			i.ID = id
			i.SKU = sku
			return nil
		},
	})
}

func (s *Service) ConnectWarehouse(ctx context.Context, id, warehouseID string) (*Inventory, error) {
	return s.runner.Run(ctx, action.Request[*Inventory]{
		Ref:     s.ref(id),
		Name:    ActionConnectWarehouse,
		Event:   EventWarehouseConnected,
		Payload: WarehouseConnectedPayload{WarehouseID: warehouseID},
		Mutate: func(i *Inventory) error {
			i.WarehouseID = warehouseID
			return nil
		},
	})
}

// ConnectReservation is the composite action: it creates a reservation
// in the reservation service first, then connects it locally. A local
// failure compensates only the local mutation; the remote reservation
// stands and is released through its own lifecycle.
func (s *Service) ConnectReservation(ctx context.Context, id, orderID string) (*Inventory, error) {
	reservationID, err := s.reservations.CreateReservation(ctx, orderID)
	if err != nil {
		return nil, err
	}

	inv, err := s.connectReservation(ctx, id, reservationID, orderID)
	if err != nil {
		s.logger.WarnContext(ctx, "reservation connect failed after remote create; reservation left standing",
			"inventory_id", id,
			"reservation_id", reservationID,
			"order_id", orderID,
			"error", err,
		)
		return nil, err
	}
	return inv, nil
}

func (s *Service) connectReservation(ctx context.Context, id, reservationID, orderID string) (*Inventory, error) {
	return s.runner.Run(ctx, action.Request[*Inventory]{
		Ref:     s.ref(id),
		Name:    ActionConnectReservation,
		Event:   EventReservationConnected,
		Payload: ReservationConnectedPayload{ReservationID: reservationID, OrderID: orderID},
		Mutate: func(i *Inventory) error {
			i.ReservationID = reservationID
			i.OrderID = orderID
			return nil
		},
	})
}

func (s *Service) Reserve(ctx context.Context, id, reservationID string) (*Inventory, error) {
	return s.runner.Run(ctx, action.Request[*Inventory]{
		Ref:     s.ref(id),
		Name:    ActionReserve,
		Event:   EventReserved,
		Payload: ReservedPayload{ReservationID: reservationID},
	})
}

func (s *Service) Release(ctx context.Context, id string) (*Inventory, error) {
	return s.runner.Run(ctx, action.Request[*Inventory]{
		Ref:   s.ref(id),
		Name:  ActionRelease,
		Event: EventReleased,
		Mutate: func(i *Inventory) error {
			i.ReservationID = ""
			i.OrderID = ""
			return nil
		},
	})
}
