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

package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// AggregateType identifies which business aggregate an event belongs to.
type AggregateType string

func (t AggregateType) String() string { return string(t) }

const (
	AggregateAccount     AggregateType = "account"
	AggregateOrder       AggregateType = "order"
	AggregatePayment     AggregateType = "payment"
	AggregateInventory   AggregateType = "inventory"
	AggregateReservation AggregateType = "reservation"
	AggregateWarehouse   AggregateType = "warehouse"
)

// AggregateTypes lists every known aggregate type. Stream, consumer and
// bucket bootstrap iterate over this.
var AggregateTypes = []AggregateType{
	AggregateAccount,
	AggregateOrder,
	AggregatePayment,
	AggregateInventory,
	AggregateReservation,
	AggregateWarehouse,
}

// EventType identifies the kind of domain event, namespaced by aggregate,
// e.g. "order/account-connected".
type EventType string

func (t EventType) String() string { return string(t) }

// LocatorScheme prefixes every aggregate locator URI.
const LocatorScheme = "aggrestream"

// AggregateRef is a reference to one aggregate instance. Services other
// than the owner hold only the reference, never a live copy.
type AggregateRef struct {
	Type AggregateType `json:"type" msgpack:"type"`
	ID   string        `json:"id"   msgpack:"id"`
}

// NewRef builds a reference to an aggregate instance.
func NewRef(t AggregateType, id string) AggregateRef {
	return AggregateRef{Type: t, ID: id}
}

// Valid reports whether the reference points at a concrete aggregate.
func (r AggregateRef) Valid() bool {
	return r.Type != "" && r.ID != ""
}

// Locator renders the reference as an opaque, resolvable URI.
func (r AggregateRef) Locator() string {
	return fmt.Sprintf("%s://%s/%s", LocatorScheme, r.Type, r.ID)
}

// Subject renders the JetStream subject carrying this aggregate's events.
func (r AggregateRef) Subject() string {
	return fmt.Sprintf(EventsPublishSubjectPattern, r.Type, r.ID)
}

// ParseLocator parses an "aggrestream://<type>/<id>" URI back into a
// reference.
func ParseLocator(locator string) (AggregateRef, error) {
	rest, ok := strings.CutPrefix(locator, LocatorScheme+"://")
	if !ok {
		return AggregateRef{}, fmt.Errorf("locator %q: missing %s scheme", locator, LocatorScheme)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return AggregateRef{}, fmt.Errorf("locator %q: want %s://<type>/<id>", locator, LocatorScheme)
	}
	return AggregateRef{Type: AggregateType(parts[0]), ID: parts[1]}, nil
}

// Event is an immutable fact recorded against exactly one aggregate
// instance. The log store assigns Sequence on append; everything else is
// fixed at emission.
type Event struct {
	ID        string       `json:"id"         msgpack:"id"`
	Aggregate AggregateRef `json:"aggregate"  msgpack:"aggregate"`
	Type      EventType    `json:"type"       msgpack:"type"`
	// Sequence is the log store's per-stream sequence, used as the
	// tie-break when creation timestamps collide.
	Sequence   uint64    `json:"seq"        msgpack:"seq"`
	CreatedAt  time.Time `json:"created_at" msgpack:"created_at"`
	ModifiedAt time.Time `json:"modified_at" msgpack:"modified_at"`
	// Payload carries the serde-encoded emission-time attributes, e.g.
	// the account ID an order was connected to.
	Payload []byte `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// NewEvent builds an event against the given aggregate with a fresh V7 ID.
func NewEvent(ref AggregateRef, t EventType, payload []byte) *Event {
	id, _ := uuid.NewV7()
	now := time.Now().UTC()
	return &Event{
		ID:         id.String(),
		Aggregate:  ref,
		Type:       t,
		CreatedAt:  now,
		ModifiedAt: now,
		Payload:    payload,
	}
}

// DerivedEvent builds a follow-on event chained off a trigger. The ID is
// deterministic in the trigger's ID so re-delivery of the trigger dedupes
// at the log store instead of appending twice.
func DerivedEvent(trigger *Event, t EventType, payload []byte) *Event {
	now := time.Now().UTC()
	return &Event{
		ID:         fmt.Sprintf("%s:%s", trigger.ID, t),
		Aggregate:  trigger.Aggregate,
		Type:       t,
		CreatedAt:  now,
		ModifiedAt: now,
		Payload:    payload,
	}
}
