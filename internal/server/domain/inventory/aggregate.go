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

// Package inventory is the inventory aggregate: a SKU held in a
// warehouse, reserved against reservations and released again. Connecting
// a reservation chains straight into the reserved state through a
// transition action.
package inventory

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated              fsm.Status = "INVENTORY_CREATED"
	StatusWarehouseConnected   fsm.Status = "WAREHOUSE_CONNECTED"
	StatusReservationConnected fsm.Status = "RESERVATION_CONNECTED"
	StatusReserved             fsm.Status = "INVENTORY_RESERVED"
	StatusReleased             fsm.Status = "INVENTORY_RELEASED"
)

const (
	EventCreated              api.EventType = "inventory/created"
	EventWarehouseConnected   api.EventType = "inventory/warehouse-connected"
	EventReservationConnected api.EventType = "inventory/reservation-connected"
	EventReserved             api.EventType = "inventory/reserved"
	EventReleased             api.EventType = "inventory/released"
)

const (
	ActionCreate             = "create"
	ActionConnectWarehouse   = "connect-warehouse"
	ActionConnectReservation = "connect-reservation"
	ActionReserve            = "reserve"
	ActionRelease            = "release"
)

type (
	CreatedPayload struct {
		SKU string `json:"sku" msgpack:"sku"`
	}

	WarehouseConnectedPayload struct {
		WarehouseID string `json:"warehouse_id" msgpack:"warehouse_id"`
	}

	ReservationConnectedPayload struct {
		ReservationID string `json:"reservation_id" msgpack:"reservation_id"`
		OrderID       string `json:"order_id"       msgpack:"order_id"`
	}

	ReservedPayload struct {
		ReservationID string `json:"reservation_id" msgpack:"reservation_id"`
	}
)

type Inventory struct {
	ID            string     `json:"id"     msgpack:"id"`
	Status        fsm.Status `json:"status" msgpack:"status"`
	SKU           string     `json:"sku,omitempty" msgpack:"sku,omitempty"`
	WarehouseID   string     `json:"warehouse_id,omitempty" msgpack:"warehouse_id,omitempty"`
	ReservationID string     `json:"reservation_id,omitempty" msgpack:"reservation_id,omitempty"`
	OrderID       string     `json:"order_id,omitempty" msgpack:"order_id,omitempty"`
}

func New() *Inventory { return &Inventory{} }

var _ fsm.Aggregate = (*Inventory)(nil)

func (i *Inventory) AggregateID() string       { return i.ID }
func (i *Inventory) CurrentStatus() fsm.Status { return i.Status }
func (i *Inventory) SetStatus(s fsm.Status)    { i.Status = s }

func (i *Inventory) Apply(conv serde.BinarySerde, event *api.Event) error {
	i.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var p CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		i.SKU = p.SKU
	case EventWarehouseConnected:
		var p WarehouseConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		i.WarehouseID = p.WarehouseID
	case EventReservationConnected:
		var p ReservationConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		i.ReservationID = p.ReservationID
		i.OrderID = p.OrderID
	case EventReleased:
		i.ReservationID = ""
		i.OrderID = ""
	}
	return nil
}
