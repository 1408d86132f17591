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

// Package account is the account aggregate: lifecycle states, events and
// actions for customer accounts.
package account

import (
	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

const (
	StatusCreated   fsm.Status = "ACCOUNT_CREATED"
	StatusActivated fsm.Status = "ACCOUNT_ACTIVATED"
	StatusSuspended fsm.Status = "ACCOUNT_SUSPENDED"
	StatusArchived  fsm.Status = "ACCOUNT_ARCHIVED"
)

const (
	EventCreated   api.EventType = "account/created"
	EventActivated api.EventType = "account/activated"
	EventSuspended api.EventType = "account/suspended"
	EventArchived  api.EventType = "account/archived"
)

const (
	ActionCreate   = "create"
	ActionActivate = "activate"
	ActionSuspend  = "suspend"
	ActionArchive  = "archive"
)

// CreatedPayload carries the attributes fixed at account creation.
type CreatedPayload struct {
	Email string `json:"email" msgpack:"email"`
	Name  string `json:"name"  msgpack:"name"`
}

type Account struct {
	ID     string     `json:"id"     msgpack:"id"`
	Status fsm.Status `json:"status" msgpack:"status"`
	Email  string     `json:"email,omitempty" msgpack:"email,omitempty"`
	Name   string     `json:"name,omitempty"  msgpack:"name,omitempty"`
}

func New() *Account { return &Account{} }

var _ fsm.Aggregate = (*Account)(nil)

func (a *Account) AggregateID() string       { return a.ID }
func (a *Account) CurrentStatus() fsm.Status { return a.Status }
func (a *Account) SetStatus(s fsm.Status)    { a.Status = s }

func (a *Account) Apply(conv serde.BinarySerde, event *api.Event) error {
	a.ID = event.Aggregate.ID
	switch event.Type {
	case EventCreated:
		var p CreatedPayload
		if err := conv.DeserializeBinary(event.Payload, &p); err != nil {
			return err
		}
		a.Email = p.Email
		a.Name = p.Name
	}
	return nil
}

// Definition builds the account transition table.
func Definition() (*fsm.Definition[*Account], error) {
	return fsm.NewDefinition(api.AggregateAccount, []fsm.Transition[*Account]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventActivated, To: StatusActivated},
		{From: StatusActivated, On: EventSuspended, To: StatusSuspended},
		{From: StatusSuspended, On: EventActivated, To: StatusActivated},
		{From: StatusActivated, On: EventArchived, To: StatusArchived},
		{From: StatusSuspended, On: EventArchived, To: StatusArchived},
	})
}
