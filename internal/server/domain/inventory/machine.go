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

package inventory

import (
	"context"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
)

// Definition builds the inventory transition table. Reaching
// RESERVATION_CONNECTED chains an InventoryReserved emission: the derived
// event's ID is a function of the trigger, so re-running the replay never
// appends a second copy.
func Definition(log eventlog.Store, conv serde.BinarySerde) (*fsm.Definition[*Inventory], error) {
	chainReserve := func(ctx context.Context, rc *fsm.ReplayContext[*Inventory]) error {
		payload, err := conv.SerializeBinary(ReservedPayload{ReservationID: rc.Snapshot.ReservationID})
		if err != nil {
			return err
		}
		derived := api.DerivedEvent(rc.Trigger, EventReserved, payload)
		_, err = log.Append(ctx, derived)
		return err
	}

	return fsm.NewDefinition(api.AggregateInventory, []fsm.Transition[*Inventory]{
		{From: fsm.Initial, On: EventCreated, To: StatusCreated},
		{From: StatusCreated, On: EventWarehouseConnected, To: StatusWarehouseConnected},
		{From: StatusWarehouseConnected, On: EventReservationConnected, To: StatusReservationConnected, Action: chainReserve},
		{From: StatusReservationConnected, On: EventReserved, To: StatusReserved},
		// Absorbs a duplicate reserved event appended past the stream's
		// dedup window; a second copy must not poison replay.
		{From: StatusReserved, On: EventReserved, To: StatusReserved},
		{From: StatusReserved, On: EventReleased, To: StatusReleased},
		{From: StatusReleased, On: EventReservationConnected, To: StatusReservationConnected, Action: chainReserve},
	})
}
