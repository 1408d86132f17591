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

package reservation

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/handler/command"
)

// Creator creates reservations over the command surface. Other aggregate
// services use this instead of holding the reservation service directly.
type Creator struct {
	client *command.Client
	conv   serde.BinarySerde
}

func NewCreator(client *command.Client, conv serde.BinarySerde) *Creator {
	return &Creator{client: client, conv: conv}
}

// CreateReservation creates a reservation for the given order and returns
// its aggregate ID.
func (c *Creator) CreateReservation(ctx context.Context, orderID string) (string, error) {
	v7, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	args, err := c.conv.SerializeBinary(CreateArgs{OrderID: orderID})
	if err != nil {
		return "", err
	}

	reply, err := c.client.Invoke(ctx, &api.Command{
		Aggregate:   api.AggregateReservation,
		Action:      ActionCreate,
		AggregateID: v7.String(),
		Args:        args,
	})
	if err != nil {
		return "", err
	}

	var created Reservation
	if err := c.conv.DeserializeBinary(reply.Snapshot, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}
