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

// Package warehouse is the warehouse aggregate: a named location that
// inventories connect to until it is decommissioned.
package warehouse

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated            fsm.Status = "WAREHOUSE_CREATED"
	StatusInventoryConnected fsm.Status = "INVENTORY_CONNECTED"
	StatusDecommissioned     fsm.Status = "WAREHOUSE_DECOMMISSIONED"
)

const (
	EventCreated            api.EventType = "warehouse/created"
	EventInventoryConnected api.EventType = "warehouse/inventory-connected"
	EventDecommissioned     api.EventType = "warehouse/decommissioned"
)

const (
	ActionCreate           = "create"
	ActionConnectInventory = "connect-inventory"
	ActionDecommission     = "decommission"
)

type (
	CreatedPayload struct {
		Name string `json:"name" msgpack:"name"`
	}

	InventoryConnectedPayload struct {
		InventoryID string `json:"inventory_id" msgpack:"inventory_id"`
	}
)

type Warehouse struct {
	ID           string     `json:"id"     msgpack:"id"`
	Status       fsm.Status `json:"status" msgpack:"status"`
	Name         string     `json:"name,omitempty" msgpack:"name,omitempty"`
	InventoryIDs []string   `json:"inventory_ids,omitempty" msgpack:"inventory_ids,omitempty"`
}

func New() *Warehouse { return &Warehouse{} }

var _ fsm.Aggregate = (*Warehouse)(nil)

func (w *Warehouse) AggregateID() string       { return w.ID }
func (w *Warehouse) CurrentStatus() fsm.Status { return w.Status }
func (w *Warehouse) SetStatus(s fsm.Status)    { w.Status = s }

func (w *Warehouse) Apply(conv serde.BinarySerde, event *api.Event) error {
	w.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var p CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		w.Name = p.Name
	case EventInventoryConnected:
		var p InventoryConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		w.connectInventory(p.InventoryID)
	}
	return nil
}

// connectInventory records the connection; replays of the same derived
// event must not duplicate the entry.
func (w *Warehouse) connectInventory(inventoryID string) {
	for _, id := range w.InventoryIDs {
		if id == inventoryID {
			return
		}
	}
	w.InventoryIDs = append(w.InventoryIDs, inventoryID)
}

// Definition builds the warehouse transition table. Connecting further
// inventories keeps the warehouse in INVENTORY_CONNECTED.
func Definition() (*fsm.Definition[*Warehouse], error) {
	return fsm.NewDefinition(api.AggregateWarehouse, []fsm.Transition[*Warehouse]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventInventoryConnected, To: StatusInventoryConnected},
		{From: StatusInventoryConnected, On: EventInventoryConnected, To: StatusInventoryConnected},
		{From: StatusCreated, On: EventDecommissioned, To: StatusDecommissioned},
		{From: StatusInventoryConnected, On: EventDecommissioned, To: StatusDecommissioned},
	})
}
