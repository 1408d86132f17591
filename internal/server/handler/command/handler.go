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

// Package command exposes the aggregate services over NATS request/reply
// on command.<aggregate>.<action> subjects.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/api/serde"
	apperrors "github.com/aggrestream/aggrestream/internal/server/errors"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
)

// ActionFunc executes one registered action and returns the resulting
// aggregate snapshot, already encoded for the reply.
type ActionFunc func(ctx context.Context, cmd *api.Command) ([]byte, error)

type Handler struct {
	conv    serde.BinarySerde
	actions map[string]ActionFunc
	logger  *slog.Logger
}

func NewHandler(conv serde.BinarySerde, logger *slog.Logger) *Handler {
	return &Handler{
		conv:    conv,
		actions: make(map[string]ActionFunc),
		logger:  logger,
	}
}

// Register wires one action under its command subject key. Registering
// the same pair twice is a programming error.
func (h *Handler) Register(aggregate api.AggregateType, action string, fn ActionFunc) {
	k := actionKey(aggregate, action)
	if _, dup := h.actions[k]; dup {
		panic(fmt.Sprintf("command: duplicate action registration %s", k))
	}
	h.actions[k] = fn
}

func actionKey(aggregate api.AggregateType, action string) string {
	return fmt.Sprintf("%s.%s", aggregate, action)
}

// HandleRequest serves one command message. Every outcome, success or
// rejection, answers the reply subject; only undecodable requests are
// dropped without a reply. The context is the processor's, so shutdown
// cancels in-flight actions.
func (h *Handler) HandleRequest(ctx context.Context, msg *nats.Msg) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in command handler", "subject", msg.Subject, "error", r)
			h.respond(msg, &api.CommandReply{Error: "internal error", Code: api.CodeInternal})
		}
	}()

	var cmd api.Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		h.logger.Error("undecodable command", "subject", msg.Subject, "error", err)
		return
	}

	fn, ok := h.actions[actionKey(cmd.Aggregate, cmd.Action)]
	if !ok {
		h.respond(msg, &api.CommandReply{
			Error: fmt.Sprintf("unknown action %s.%s", cmd.Aggregate, cmd.Action),
			Code:  api.CodeInternal,
		})
		return
	}

	snapshot, err := fn(ctx, &cmd)
	if err != nil {
		h.logger.Warn("command rejected",
			"aggregate", cmd.Aggregate.String(),
			"action", cmd.Action,
			"aggregate_id", cmd.AggregateID,
			"error", err,
		)
		h.respond(msg, &api.CommandReply{Error: err.Error(), Code: apperrors.Code(err)})
		return
	}

	h.respond(msg, &api.CommandReply{Snapshot: snapshot})
}

func (h *Handler) respond(msg *nats.Msg, reply *api.CommandReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("failed to encode command reply", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		h.logger.Error("failed to send command reply", "subject", msg.Reply, "error", err)
	}
}

// RunProcessor subscribes the handler to the command subject space and
// serves until the context is cancelled.
func RunProcessor(ctx context.Context, conn *jetstreamx.Connection, handler *Handler) error {
	sub, err := conn.QueueSubscribe(
		api.CommandRequestSubjectPattern,
		api.CommandProcessorsConsumer,
		func(msg *nats.Msg) { handler.HandleRequest(ctx, msg) },
	)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}
