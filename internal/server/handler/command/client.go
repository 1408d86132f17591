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

package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aggrestream/aggrestream/api"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
)

// Client invokes aggregate actions over the command subject space. Used
// by callers outside the owning service, including cross-aggregate
// composite actions.
type Client struct {
	conn *jetstreamx.Connection
}

func NewClient(conn *jetstreamx.Connection) *Client {
	return &Client{conn: conn}
}

// Invoke sends one command and decodes the reply. A reply carrying an
// error code is returned as a *ReplyError.
func (c *Client) Invoke(ctx context.Context, cmd *api.Command) (*api.CommandReply, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("command: encode %s.%s: %w", cmd.Aggregate, cmd.Action, err)
	}

	subject := fmt.Sprintf(api.CommandSubjectPattern, cmd.Aggregate, cmd.Action)
	msg, err := c.conn.Request(ctx, subject, data)
	if err != nil {
		return nil, err
	}

	var reply api.CommandReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("command: decode reply from %s: %w", subject, err)
	}
	if reply.Error != "" {
		return nil, &ReplyError{Aggregate: cmd.Aggregate, Action: cmd.Action, Code: reply.Code, Message: reply.Error}
	}
	return &reply, nil
}

// ReplyError is a remote rejection carried back over request/reply.
type ReplyError struct {
	Aggregate api.AggregateType
	Action    string
	Code      string
	Message   string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("command %s.%s failed (%s): %s", e.Aggregate, e.Action, e.Code, e.Message)
}
