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

package account

import (
	"context"
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// Service exposes the account actions.
type Service struct {
	runner *action.Runner[*Account]
}

func NewService(
	log eventlog.Store,
	repo snapshot.Repository[*Account],
	applier action.Applier[*Account],
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
	return api.NewRef(api.AggregateAccount, id)
}

func (s *Service) Create(ctx context.Context, id, email, name string) (*Account, error) {
	return s.runner.Run(ctx, action.Request[*Account]{
		Ref:     s.ref(id),
		Name:    ActionCreate,
		Event:   EventCreated,
		Payload: CreatedPayload{Email: email, Name: name},
		Mutate: func(a *Account) error {
			a.ID = id
			a.Email = email
			a.Name = name
			return nil
		},
	})
}

func (s *Service) Activate(ctx context.Context, id string) (*Account, error) {
	return s.runner.Run(ctx, action.Request[*Account]{
		Ref:   s.ref(id),
		Name:  ActionActivate,
		Event: EventActivated,
	})
}

func (s *Service) Suspend(ctx context.Context, id string) (*Account, error) {
	return s.runner.Run(ctx, action.Request[*Account]{
		Ref:   s.ref(id),
		Name:  ActionSuspend,
		Event: EventSuspended,
	})
}

func (s *Service) Archive(ctx context.Context, id string) (*Account, error) {
	return s.runner.Run(ctx, action.Request[*Account]{
		Ref:   s.ref(id),
		Name:  ActionArchive,
		Event: EventArchived,
	})
}
