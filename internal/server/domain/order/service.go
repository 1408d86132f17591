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

package order

import (
	"context"
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// Service exposes the order actions.
type Service struct {
	runner *action.Runner[*Order]
}

func NewService(
	log eventlog.Store,
	repo snapshot.Repository[*Order],
	applier action.Applier[*Order],
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
	return api.NewRef(api.AggregateOrder, id)
}

func (s *Service) Create(ctx context.Context, id string, items []LineItem, shippingAddress string) (*Order, error) {
	return s.runner.Run(ctx, action.Request[*Order]{
		Ref:     s.ref(id),
		Name:    ActionCreate,
		Event:   EventCreated,
		Payload: CreatedPayload{Items: items, ShippingAddress: shippingAddress},
		Mutate: func(o *Order) error {
			o.ID = id
			o.Items = items
			o.ShippingAddress = shippingAddress
			return nil
		},
	})
}

func (s *Service) ConnectAccount(ctx context.Context, id, accountID string) (*Order, error) {
	return s.runner.Run(ctx, action.Request[*Order]{
		Ref:     s.ref(id),
		Name:    ActionConnectAccount,
		Event:   EventAccountConnected,
		Payload: AccountConnectedPayload{AccountID: accountID},
		Mutate: func(o *Order) error {
			o.AccountID = accountID
			return nil
		},
	})
}

func (s *Service) ConnectPayment(ctx context.Context, id, paymentID string) (*Order, error) {
	return s.runner.Run(ctx, action.Request[*Order]{
		Ref:     s.ref(id),
		Name:    ActionConnectPayment,
		Event:   EventPaymentConnected,
		Payload: PaymentConnectedPayload{PaymentID: paymentID},
		Mutate: func(o *Order) error {
			o.PaymentID = paymentID
			return nil
		},
	})
}

func (s *Service) Fulfill(ctx context.Context, id string) (*Order, error) {
	return s.runner.Run(ctx, action.Request[*Order]{
		Ref:   s.ref(id),
		Name:  ActionFulfill,
		Event: EventFulfilled,
	})
}

func (s *Service) Fail(ctx context.Context, id string) (*Order, error) {
	return s.runner.Run(ctx, action.Request[*Order]{
		Ref:   s.ref(id),
		Name:  ActionFail,
		Event: EventFailed,
	})
}
