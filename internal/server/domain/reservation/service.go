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
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// Service exposes the reservation actions.
type Service struct {
	runner *action.Runner[*Reservation]
}

func NewService(
	log eventlog.Store,
	repo snapshot.Repository[*Reservation],
	applier action.Applier[*Reservation],
	conv serde.BinarySerde,
	logger *slog.Logger,
) (*Service, error) {
	def, err := Definition()
	if err != nil {
		return nil, err
	}
	return &Service{
		runner: action.NewRunner(def, log, repo, applier, conv, New, logger),
	}, nil
}

func (s *Service) ref(id string) api.AggregateRef {
	return api.NewRef(api.AggregateReservation, id)
}

func (s *Service) Create(ctx context.Context, id, orderID string) (*Reservation, error) {
	return s.runner.Run(ctx, action.Request[*Reservation]{
		Ref:     s.ref(id),
		Name:    ActionCreate,
		Event:   EventCreated,
		Payload: CreatedPayload{OrderID: orderID},
		Mutate: func(r *Reservation) error {
			r.ID = id
			r.OrderID = orderID
			return nil
		},
	})
}

func (s *Service) ConnectOrder(ctx context.Context, id, orderID string) (*Reservation, error) {
	return s.runner.Run(ctx, action.Request[*Reservation]{
		Ref:     s.ref(id),
		Name:    ActionConnectOrder,
		Event:   EventOrderConnected,
		Payload: OrderConnectedPayload{OrderID: orderID},
		Mutate: func(r *Reservation) error {
			r.OrderID = orderID
			return nil
		},
	})
}

func (s *Service) Confirm(ctx context.Context, id string) (*Reservation, error) {
	return s.runner.Run(ctx, action.Request[*Reservation]{
		Ref:   s.ref(id),
		Name:  ActionConfirm,
		Event: EventConfirmed,
	})
}

func (s *Service) Release(ctx context.Context, id string) (*Reservation, error) {
	return s.runner.Run(ctx, action.Request[*Reservation]{
		Ref:   s.ref(id),
		Name:  ActionRelease,
		Event: EventReleased,
	})
}
