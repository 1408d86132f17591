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

package errors

import (
	"errors"
	"fmt"

	"github.com/aggrestream/aggrestream/api"
)

// Common error classes for the replication engine and the action layer.

var (
	// ErrInvalidEvent indicates an event referencing a non-existent or
	// unresolvable aggregate. Never retried.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrLogUnavailable indicates a transient failure reaching the event
	// log store. Retried at the ingestion boundary only.
	ErrLogUnavailable = errors.New("event log unavailable")

	// ErrIllegalState indicates an action precondition violation. Never
	// retried; surfaced to the caller as a rejected command.
	ErrIllegalState = errors.New("illegal aggregate state")

	// ErrCompensation indicates a rollback failed after a primary
	// failure, leaving the aggregate's persisted snapshot inconsistent
	// with its event log. Fatal for that aggregate instance.
	ErrCompensation = errors.New("compensation failed")
)

// InvalidEventError carries the offending event's identity.
type InvalidEventError struct {
	EventID string
	Message string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid event %s: %s", e.EventID, e.Message)
}

func (e *InvalidEventError) Is(target error) bool {
	return target == ErrInvalidEvent
}

// NewInvalidEvent creates an invalid event error.
func NewInvalidEvent(eventID, message string) *InvalidEventError {
	return &InvalidEventError{EventID: eventID, Message: message}
}

// LogUnavailableError wraps the transient cause of a failed log fetch or
// append.
type LogUnavailableError struct {
	Aggregate api.AggregateRef
	Cause     error
}

func (e *LogUnavailableError) Error() string {
	return fmt.Sprintf("event log unavailable for %s/%s: %v", e.Aggregate.Type, e.Aggregate.ID, e.Cause)
}

func (e *LogUnavailableError) Unwrap() error {
	return e.Cause
}

func (e *LogUnavailableError) Is(target error) bool {
	return target == ErrLogUnavailable
}

// NewLogUnavailable creates a log unavailable error.
func NewLogUnavailable(ref api.AggregateRef, cause error) *LogUnavailableError {
	return &LogUnavailableError{Aggregate: ref, Cause: cause}
}

// IllegalStateError records which action was rejected and the status the
// aggregate was actually in.
type IllegalStateError struct {
	Aggregate api.AggregateRef
	Action    string
	Status    string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("%s %q rejected for %s/%s: aggregate is %s",
		e.Aggregate.Type, e.Action, e.Aggregate.Type, e.Aggregate.ID, e.Status)
}

func (e *IllegalStateError) Is(target error) bool {
	return target == ErrIllegalState
}

// NewIllegalState creates an illegal state error.
func NewIllegalState(ref api.AggregateRef, action, status string) *IllegalStateError {
	return &IllegalStateError{Aggregate: ref, Action: action, Status: status}
}

// CompensationError pairs the primary failure with the rollback failure.
// Both must be surfaced; neither may be swallowed.
type CompensationError struct {
	Aggregate api.AggregateRef
	Cause     error
	Rollback  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation failed for %s/%s: rollback error %v after primary error %v",
		e.Aggregate.Type, e.Aggregate.ID, e.Rollback, e.Cause)
}

func (e *CompensationError) Unwrap() error {
	return e.Cause
}

func (e *CompensationError) Is(target error) bool {
	return target == ErrCompensation
}

// NewCompensation creates a compensation error.
func NewCompensation(ref api.AggregateRef, cause, rollback error) *CompensationError {
	return &CompensationError{Aggregate: ref, Cause: cause, Rollback: rollback}
}

// Code maps an error to its wire-level reply code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrIllegalState):
		return api.CodeIllegalState
	case errors.Is(err, ErrInvalidEvent):
		return api.CodeInvalidEvent
	case errors.Is(err, ErrLogUnavailable):
		return api.CodeLogUnavailable
	case errors.Is(err, ErrCompensation):
		return api.CodeCompensation
	default:
		return api.CodeInternal
	}
}
