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

package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aggrestream/aggrestream/api/serde"
	"github.com/aggrestream/aggrestream/internal/server/config"
	"github.com/aggrestream/aggrestream/internal/server/handler/command"
	jetstreamx "github.com/aggrestream/aggrestream/internal/server/infra/jetstream"
	"github.com/aggrestream/aggrestream/internal/server/types"
)

// Manager owns the NATS connection and supervises the command processor
// and, in BASE mode, one replicator per aggregate type.
type Manager struct {
	conn        *jetstreamx.Connection
	cfg         *config.Config
	conv        serde.BinarySerde
	handler     *command.Handler
	replicators []func(ctx context.Context) error
}

func NewManager(ctx context.Context, cfg *config.Config, conv serde.BinarySerde) (*Manager, error) {
	conn, err := jetstreamx.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	if !conn.IsConnected() {
		return nil, fmt.Errorf("cannot connect to NATS instance")
	}

	m := &Manager{
		conn:    conn,
		cfg:     cfg,
		conv:    conv,
		handler: command.NewHandler(conv, slog.Default()),
	}

	if err := m.ensureStreams(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure NATS streams: %w", err)
	}
	if err := m.ensureKV(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure NATS KV buckets: %w", err)
	}
	if err := m.wireServices(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to wire aggregate services: %w", err)
	}

	return m, nil
}

func (m *Manager) acid() bool {
	return m.cfg.Consistency == types.ConsistencyACID
}

func (m *Manager) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting command processor")
		return command.RunProcessor(gCtx, m.conn, m.handler)
	})

	for _, run := range m.replicators {
		g.Go(func() error {
			return run(gCtx)
		})
	}

	slog.Info("manager is running",
		"consistency", string(m.cfg.Consistency),
		"replicators", len(m.replicators),
	)

	err := g.Wait()

	slog.Info("initiating graceful shutdown")
	m.Shutdown()

	if err != nil && err != context.Canceled {
		slog.Error("manager stopped with error", "error", err)
		return err
	}

	slog.Info("manager shutdown complete")
	return nil
}

// Shutdown performs graceful shutdown of all manager components
func (m *Manager) Shutdown() {
	if m.conn != nil {
		slog.Info("closing NATS connection")
		m.conn.Close()
	}
}
