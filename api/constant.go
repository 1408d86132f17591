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

// NATS Stream Names
const (
	EventsStream = "AGGREGATE_EVENTS"
)

// NATS Subject Prefix
const (
	EventsSubjectPrefix = "events"
)

// NATS Subject Format
const (
	// EventsPublishSubjectPattern expects aggregate type and aggregate ID.
	EventsPublishSubjectPattern = EventsSubjectPrefix + ".%s.%s"
)

// NATS Subject Patterns
const (
	EventsFilterSubjectPattern = EventsSubjectPrefix + ".>"

	// EventsTypeFilterSubjectPattern expects an aggregate type.
	EventsTypeFilterSubjectPattern = EventsSubjectPrefix + ".%s.*"

	CommandRequestSubjectPattern = "command.>"

	// CommandSubjectPattern expects aggregate type and action name.
	CommandSubjectPattern = "command.%s.%s"
)

// Consumer Names
const (
	CommandProcessorsConsumer = "command-processors"

	// ReplicatorConsumerPattern expects an aggregate type.
	ReplicatorConsumerPattern = "replicator-%s"
)

// KeyValue Bucket Names
const (
	// SnapshotBucketPattern expects an aggregate type.
	SnapshotBucketPattern = "snapshots-%s"
)

// JetStream Headers
const (
	EventTypeHeader = "Aggrestream-Event-Type"
	EventIDHeader   = "Aggrestream-Event-ID"
)
