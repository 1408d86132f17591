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
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// Service exposes the warehouse actions.
type Service struct {
	runner *action.Runner[*Warehouse]
}

func NewService(
	log eventlog.Store,
	repo snapshot.Repository[*Warehouse],
	applier action.Applier[*Warehouse],
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
	return api.NewRef(api.AggregateWarehouse, id)
}

func (s *Service) Create(ctx context.Context, id, name string) (*Warehouse, error) {
	return s.runner.Run(ctx, action.Request[*Warehouse]{
		Ref:     s.ref(id),
		Name:    ActionCreate,
		Event:   EventCreated,
		Payload: CreatedPayload{Name: name},
		Mutate: func(w *Warehouse) error {
			w.ID = id
			w.Name = name
			return nil
		},
	})
}

func (s *Service) ConnectInventory(ctx context.Context, id, inventoryID string) (*Warehouse, error) {
	return s.runner.Run(ctx, action.Request[*Warehouse]{
		Ref:     s.ref(id),
		Name:    ActionConnectInventory,
		Event:   EventInventoryConnected,
		Payload: InventoryConnectedPayload{InventoryID: inventoryID},
		Mutate: func(w *Warehouse) error {
			w.connectInventory(inventoryID)
			return nil
		},
	})
}

func (s *Service) Decommission(ctx context.Context, id string) (*Warehouse, error) {
	return s.runner.Run(ctx, action.Request[*Warehouse]{
		Ref:   s.ref(id),
		Name:  ActionDecommission,
		Event: EventDecommissioned,
	})
}
