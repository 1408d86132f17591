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

	"github.com/gofrs/uuid/v5"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/handler/command"
)

// CreateArgs is the command payload for the create action.
type CreateArgs struct {
	Email string `json:"email" msgpack:"email"`
	Name  string `json:"name"  msgpack:"name"`
}

// RegisterCommands wires the account actions onto the command handler.
func (s *Service) RegisterCommands(h *command.Handler, conv serde.BinarySerde) {
	h.Register(api.AggregateAccount, ActionCreate, func(ctx context.Context, cmd *api.Command) ([]byte, error) {
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
		snap, err := s.Create(ctx, id, args.Email, args.Name)
		if err != nil {
			return nil, err
		}
		return conv.SerializeBinary(snap)
	})

	statusActions := map[string]func(context.Context, string) (*Account, error){
		ActionActivate: s.Activate,
		ActionSuspend:  s.Suspend,
		ActionArchive:  s.Archive,
	}
	for name, run := range statusActions {
		h.Register(api.AggregateAccount, name, func(ctx context.Context, cmd *api.Command) ([]byte, error) {
			snap, err := run(ctx, cmd.AggregateID)
			if err != nil {
				return nil, err
			}
			return conv.SerializeBinary(snap)
		})
	}
}
