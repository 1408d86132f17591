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

// Package payment is the payment aggregate: created, connected to its
// order, then processed or failed.
package payment

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated        fsm.Status = "PAYMENT_CREATED"
	StatusOrderConnected fsm.Status = "ORDER_CONNECTED"
	StatusProcessed      fsm.Status = "PAYMENT_PROCESSED"
	StatusFailed         fsm.Status = "PAYMENT_FAILED"
)

const (
	EventCreated        api.EventType = "payment/created"
	EventOrderConnected api.EventType = "payment/order-connected"
	EventProcessed      api.EventType = "payment/processed"
	EventFailed         api.EventType = "payment/failed"
)

const (
	ActionCreate       = "create"
	ActionConnectOrder = "connect-order"
	ActionProcess      = "process"
	ActionFail         = "fail"
)

type (
	CreatedPayload struct {
		AmountCents int64  `json:"amount_cents" msgpack:"amount_cents"`
		Currency    string `json:"currency"     msgpack:"currency"`
	}

	OrderConnectedPayload struct {
		OrderID string `json:"order_id" msgpack:"order_id"`
	}
)

type Payment struct {
	ID          string     `json:"id"     msgpack:"id"`
	Status      fsm.Status `json:"status" msgpack:"status"`
	OrderID     string     `json:"order_id,omitempty" msgpack:"order_id,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty" msgpack:"amount_cents,omitempty"`
	Currency    string     `json:"currency,omitempty" msgpack:"currency,omitempty"`
}

func New() *Payment { return &Payment{} }

var _ fsm.Aggregate = (*Payment)(nil)

func (p *Payment) AggregateID() string       { return p.ID }
func (p *Payment) CurrentStatus() fsm.Status { return p.Status }
func (p *Payment) SetStatus(s fsm.Status)    { p.Status = s }

func (p *Payment) Apply(conv serde.BinarySerde, event *api.Event) error {
	p.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var pl CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &pl); err != nil {
			return err
		}
		p.AmountCents = pl.AmountCents
		p.Currency = pl.Currency
	case EventOrderConnected:
		var pl OrderConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &pl); err != nil {
			return err
		}
		p.OrderID = pl.OrderID
	}
	return nil
}

// Definition builds the payment transition table.
func Definition() (*fsm.Definition[*Payment], error) {
	return fsm.NewDefinition(api.AggregatePayment, []fsm.Transition[*Payment]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventOrderConnected, To: StatusOrderConnected},
		{From: StatusOrderConnected, On: EventProcessed, To: StatusProcessed},
		{From: StatusOrderConnected, On: EventFailed, To: StatusFailed},
	})
}
