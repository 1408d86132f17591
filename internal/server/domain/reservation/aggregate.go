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

// Package reservation is the reservation aggregate: a hold on inventory
// created on behalf of an order, then confirmed or released.
package reservation

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated        fsm.Status = "RESERVATION_CREATED"
	StatusOrderConnected fsm.Status = "ORDER_CONNECTED"
	StatusConfirmed      fsm.Status = "RESERVATION_CONFIRMED"
	StatusReleased       fsm.Status = "RESERVATION_RELEASED"
)

const (
	EventCreated        api.EventType = "reservation/created"
	EventOrderConnected api.EventType = "reservation/order-connected"
	EventConfirmed      api.EventType = "reservation/confirmed"
	EventReleased       api.EventType = "reservation/released"
)

const (
	ActionCreate       = "create"
	ActionConnectOrder = "connect-order"
	ActionConfirm      = "confirm"
	ActionRelease      = "release"
)

type (
	CreatedPayload struct {
		OrderID string `json:"order_id" msgpack:"order_id"`
	}

	OrderConnectedPayload struct {
		OrderID string `json:"order_id" msgpack:"order_id"`
	}
)

type Reservation struct {
	ID      string     `json:"id"     msgpack:"id"`
	Status  fsm.Status `json:"status" msgpack:"status"`
	OrderID string     `json:"order_id,omitempty" msgpack:"order_id,omitempty"`
}

func New() *Reservation { return &Reservation{} }

var _ fsm.Aggregate = (*Reservation)(nil)

func (r *Reservation) AggregateID() string       { return r.ID }
func (r *Reservation) CurrentStatus() fsm.Status { return r.Status }
func (r *Reservation) SetStatus(s fsm.Status)    { r.Status = s }

func (r *Reservation) Apply(conv serde.BinarySerde, event *api.Event) error {
	r.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var p CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		r.OrderID = p.OrderID
	case EventOrderConnected:
		var p OrderConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		r.OrderID = p.OrderID
	}
	return nil
}

// Definition builds the reservation transition table.
func Definition() (*fsm.Definition[*Reservation], error) {
	return fsm.NewDefinition(api.AggregateReservation, []fsm.Transition[*Reservation]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventOrderConnected, To: StatusOrderConnected},
		{From: StatusOrderConnected, On: EventConfirmed, To: StatusConfirmed},
		{From: StatusOrderConnected, On: EventReleased, To: StatusReleased},
	})
}
