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

	"github.com/gofrs/uuid/v5"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/handler/command"
)

type (
	CreateArgs struct {
		Name string `json:"name" msgpack:"name"`
	}

	ConnectInventoryArgs struct {
		InventoryID string `json:"inventory_id" msgpack:"inventory_id"`
	}
)

// RegisterCommands wires the warehouse actions onto the command handler.
func (s *Service) RegisterCommands(h *command.Handler, conv serde.BinarySerde) {
	h.Register(api.AggregateWarehouse, ActionCreate, func(ctx context.Context, cmd *api.Command) ([]byte, error) {
		var args CreateArgs
		if len(cmd.Args) > 0 {
			if err := conv.DeserializeBinary(cmd.Args, &args); err != nil {
				return nil, err
			}
		}
		id := cmd.AggregateID
		if id == "" {
			v7, err := uuid.NewV7()
			if err != nil {
				return nil, err
			}
			id = v7.String()
		}
		snap, err := s.Create(ctx, id, args.Name)
		if err != nil {
			return nil, err
		}
		return conv.SerializeBinary(snap)
	})

	h.Register(api.AggregateWarehouse, ActionConnectInventory, func(ctx context.Context, cmd *api.Command) ([]byte, error) {
		var args ConnectInventoryArgs
		if err := conv.DeserializeBinary(cmd.Args, &args); err != nil {
			return nil, err
		}
		snap, err := s.ConnectInventory(ctx, cmd.AggregateID, args.InventoryID)
		if err != nil {
			return nil, err
		}
		return conv.SerializeBinary(snap)
	})

	h.Register(api.AggregateWarehouse, ActionDecommission, func(ctx context.Context, cmd *api.Command) ([]byte, error) {
		snap, err := s.Decommission(ctx, cmd.AggregateID)
		if err != nil {
			return nil, err
		}
		return conv.SerializeBinary(snap)
	})
}
