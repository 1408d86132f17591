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

type (
	// Command is one action invocation against an aggregate service,
	// carried over NATS request/reply.
	Command struct {
		Aggregate   AggregateType `json:"aggregate"`
		Action      string        `json:"action"`
		AggregateID string        `json:"aggregate_id,omitempty"`
		Args        []byte        `json:"args,omitempty"`
	}

	// CommandReply carries the resulting aggregate snapshot, or the
	// rejection that stopped the action.
	CommandReply struct {
		Error    string `json:"error,omitempty"`
		Code     string `json:"code,omitempty"`
		Snapshot []byte `json:"snapshot,omitempty"`
	}
)

// Reply error codes, mirroring the engine's error taxonomy so remote
// callers can distinguish rejections from transient failures.
const (
	CodeIllegalState   = "illegal_state"
	CodeInvalidEvent   = "invalid_event"
	CodeLogUnavailable = "log_unavailable"
	CodeCompensation   = "compensation_failed"
	CodeInternal       = "internal"
)
