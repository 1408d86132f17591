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

// Package order is the order aggregate: an order is created with its line
// items, connected to an account and a payment, then fulfilled or failed.
package order

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated          fsm.Status = "ORDER_CREATED"
	StatusAccountConnected fsm.Status = "ACCOUNT_CONNECTED"
	StatusPaymentConnected fsm.Status = "PAYMENT_CONNECTED"
	StatusFulfilled        fsm.Status = "ORDER_FULFILLED"
	StatusFailed           fsm.Status = "ORDER_FAILED"
)

const (
	EventCreated          api.EventType = "order/created"
	EventAccountConnected api.EventType = "order/account-connected"
	EventPaymentConnected api.EventType = "order/payment-connected"
	EventFulfilled        api.EventType = "order/fulfilled"
	EventFailed           api.EventType = "order/failed"
)

const (
	ActionCreate         = "create"
	ActionConnectAccount = "connect-account"
	ActionConnectPayment = "connect-payment"
	ActionFulfill        = "fulfill"
	ActionFail           = "fail"
)

// LineItem is one ordered SKU with its quantity.
type LineItem struct {
	SKU      string `json:"sku"      msgpack:"sku"`
	Quantity int    `json:"quantity" msgpack:"quantity"`
}

type (
	CreatedPayload struct {
		Items           []LineItem `json:"items"            msgpack:"items"`
		ShippingAddress string     `json:"shipping_address" msgpack:"shipping_address"`
	}

	AccountConnectedPayload struct {
		AccountID string `json:"account_id" msgpack:"account_id"`
	}

	PaymentConnectedPayload struct {
		PaymentID string `json:"payment_id" msgpack:"payment_id"`
	}
)

type Order struct {
	ID              string     `json:"id"     msgpack:"id"`
	Status          fsm.Status `json:"status" msgpack:"status"`
	AccountID       string     `json:"account_id,omitempty" msgpack:"account_id,omitempty"`
	PaymentID       string     `json:"payment_id,omitempty" msgpack:"payment_id,omitempty"`
	Items           []LineItem `json:"items,omitempty" msgpack:"items,omitempty"`
	ShippingAddress string     `json:"shipping_address,omitempty" msgpack:"shipping_address,omitempty"`
}

func New() *Order { return &Order{} }

var _ fsm.Aggregate = (*Order)(nil)

func (o *Order) AggregateID() string       { return o.ID }
func (o *Order) CurrentStatus() fsm.Status { return o.Status }
func (o *Order) SetStatus(s fsm.Status)    { o.Status = s }

func (o *Order) Apply(conv serde.BinarySerde, event *api.Event) error {
	o.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var p CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		o.Items = p.Items
		o.ShippingAddress = p.ShippingAddress
	case EventAccountConnected:
		var p AccountConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		o.AccountID = p.AccountID
	case EventPaymentConnected:
		var p PaymentConnectedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		o.PaymentID = p.PaymentID
	}
	return nil
}

// Definition builds the order transition table.
func Definition() (*fsm.Definition[*Order], error) {
	return fsm.NewDefinition(api.AggregateOrder, []fsm.Transition[*Order]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventAccountConnected, To: StatusAccountConnected},
		{From: StatusAccountConnected, On: EventPaymentConnected, To: StatusPaymentConnected},
		{From: StatusPaymentConnected, On: EventFulfilled, To: StatusFulfilled},
		{From: StatusPaymentConnected, On: EventFailed, To: StatusFailed},
	})
}
