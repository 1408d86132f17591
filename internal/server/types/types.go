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

package types

// Mode selects the runtime profile of the server.
type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// Consistency selects how replicated snapshots are produced.
type Consistency string

const (
	// ConsistencyBASE delivers events to the replication engine through
	// the subscribed stream; callers are never blocked on replay.
	ConsistencyBASE Consistency = "base"
	// ConsistencyACID makes the action layer invoke replay inline and
	// hand the resulting snapshot back to its own caller.
	ConsistencyACID Consistency = "acid"
)
