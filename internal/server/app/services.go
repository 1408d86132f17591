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
	"log/slog"

	"github.com/aggrestream/aggrestream/api"
	"github.com/aggrestream/aggrestream/internal/server/action"
	"github.com/aggrestream/aggrestream/internal/server/domain/account"
	"github.com/aggrestream/aggrestream/internal/server/domain/inventory"
	"github.com/aggrestream/aggrestream/internal/server/domain/order"
	"github.com/aggrestream/aggrestream/internal/server/domain/payment"
	"github.com/aggrestream/aggrestream/internal/server/domain/reservation"
	"github.com/aggrestream/aggrestream/internal/server/domain/warehouse"
	"github.com/aggrestream/aggrestream/internal/server/eventlog"
	"github.com/aggrestream/aggrestream/internal/server/fsm"
	"github.com/aggrestream/aggrestream/internal/server/handler/command"
	"github.com/aggrestream/aggrestream/internal/server/ingest"
	"github.com/aggrestream/aggrestream/internal/server/replication"
	"github.com/aggrestream/aggrestream/internal/server/resolver"
	"github.com/aggrestream/aggrestream/internal/server/snapshot"
)

// binding is one aggregate type's replication wiring: its engine, its KV
// snapshot projection, and (BASE mode) its replicator.
type binding[A fsm.Aggregate] struct {
	engine *replication.Engine[A]
	repo   snapshot.Repository[A]
}

// bindAggregate builds the replication side of one aggregate type and,
// in BASE mode, schedules its replicator on the manager.
func bindAggregate[A fsm.Aggregate](
	m *Manager,
	registry *resolver.Registry,
	t api.AggregateType,
	def *fsm.Definition[A],
	fresh func() A,
	logger *slog.Logger,
) binding[A] {
	engine := replication.NewEngine(def, registry, m.conv, fresh, logger)
	repo := snapshot.Repository[A](snapshot.NewKV(m.conn, t, m.conv, fresh))

	if !m.acid() {
		consumer := ingest.NewConsumer(m.conn, engine, repo, m.conv, t, logger)
		m.replicators = append(m.replicators, consumer.Run)
	}
	return binding[A]{engine: engine, repo: repo}
}

// applier returns the inline applier for the action layer: the engine in
// ACID mode, nil in BASE mode where the replicator applies instead.
func (b binding[A]) applier(acid bool) action.Applier[A] {
	if acid {
		return b.engine
	}
	return nil
}

// wireServices builds all six aggregate services against the shared
// event log and registers their actions on the command handler. Every
// transition table is constructed here, so an ill-formed table stops the
// process before it serves anything.
func (m *Manager) wireServices() error {
	logger := slog.Default()
	store := eventlog.NewJetStream(m.conn, api.EventsStream, m.conv)

	registry := resolver.NewRegistry()
	for _, t := range api.AggregateTypes {
		registry.Bind(t, store)
	}

	acid := m.acid()

	accountDef, err := account.Definition()
	if err != nil {
		return err
	}
	accountBind := bindAggregate(m, registry, api.AggregateAccount, accountDef, account.New, logger)
	accountSvc, err := account.NewService(store, accountBind.repo, accountBind.applier(acid), m.conv, logger)
	if err != nil {
		return err
	}
	accountSvc.RegisterCommands(m.handler, m.conv)

	orderDef, err := order.Definition()
	if err != nil {
		return err
	}
	orderBind := bindAggregate(m, registry, api.AggregateOrder, orderDef, order.New, logger)
	orderSvc, err := order.NewService(store, orderBind.repo, orderBind.applier(acid), m.conv, logger)
	if err != nil {
		return err
	}
	orderSvc.RegisterCommands(m.handler, m.conv)

	paymentDef, err := payment.Definition()
	if err != nil {
		return err
	}
	paymentBind := bindAggregate(m, registry, api.AggregatePayment, paymentDef, payment.New, logger)
	paymentSvc, err := payment.NewService(store, paymentBind.repo, paymentBind.applier(acid), m.conv, logger)
	if err != nil {
		return err
	}
	paymentSvc.RegisterCommands(m.handler, m.conv)

	reservationDef, err := reservation.Definition()
	if err != nil {
		return err
	}
	reservationBind := bindAggregate(m, registry, api.AggregateReservation, reservationDef, reservation.New, logger)
	reservationSvc, err := reservation.NewService(store, reservationBind.repo, reservationBind.applier(acid), m.conv, logger)
	if err != nil {
		return err
	}
	reservationSvc.RegisterCommands(m.handler, m.conv)

	warehouseDef, err := warehouse.Definition()
	if err != nil {
		return err
	}
	warehouseBind := bindAggregate(m, registry, api.AggregateWarehouse, warehouseDef, warehouse.New, logger)
	warehouseSvc, err := warehouse.NewService(store, warehouseBind.repo, warehouseBind.applier(acid), m.conv, logger)
	if err != nil {
		return err
	}
	warehouseSvc.RegisterCommands(m.handler, m.conv)

	inventoryDef, err := inventory.Definition(store, m.conv)
	if err != nil {
		return err
	}
	inventoryBind := bindAggregate(m, registry, api.AggregateInventory, inventoryDef, inventory.New, logger)
	reservations := reservation.NewCreator(command.NewClient(m.conn), m.conv)
	inventorySvc, err := inventory.NewService(store, inventoryBind.repo, inventoryBind.applier(acid), reservations, m.conv, logger)
	if err != nil {
		return err
	}
	inventorySvc.RegisterCommands(m.handler, m.conv)

	return nil
}
