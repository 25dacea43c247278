// Licensed to the GlacierDB project under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The GlacierDB project licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package warehouse keeps the registry of compute warehouses and resolves
// which compute nodes serve a shard on behalf of the compaction scheduler.
// A warehouse is a named pool of worker groups; the node membership of a
// group belongs to the shard placement service and is never duplicated here.
package warehouse

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/lock"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
)

const (
	// DefaultWarehouseID is reserved, the default warehouse always owns it.
	DefaultWarehouseID int64 = 0
	// DefaultWarehouseName names the warehouse that serves every background
	// task when no explicit warehouse is picked.
	DefaultWarehouseName = "default_warehouse"
)

// Warehouse is one compute resource pool. Entries are immutable once
// registered, updates go through drop-and-add.
type Warehouse struct {
	ID   int64
	Name string
	// WorkerGroupIDs is ordered, assignments resolve against the first one.
	WorkerGroupIDs []int64
}

func (w *Warehouse) String() string {
	return fmt.Sprintf("Warehouse:<id: %d, name: %s>", w.ID, w.Name)
}

// Manager is the warehouse registry. Reads vastly outnumber writes, a single
// reader/writer lock guards both lookup maps.
type Manager struct {
	mu       lock.RWMutex
	idToWh   map[int64]*Warehouse
	nameToWh map[string]*Warehouse
}

func NewManager() *Manager {
	return &Manager{
		idToWh:   make(map[int64]*Warehouse),
		nameToWh: make(map[string]*Warehouse),
	}
}

// InitDefaultWarehouse registers the default warehouse under its reserved id.
// Re-initialization is a no-op, a conflicting entry under the reserved id
// panics, the process must not run without a usable default warehouse.
func (m *Manager) InitDefaultWarehouse() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.idToWh[DefaultWarehouseID]; ok {
		if existing.Name != DefaultWarehouseName {
			panic(fmt.Sprintf("warehouse %s conflicts with the reserved default warehouse id %d",
				existing.Name, DefaultWarehouseID))
		}
		return
	}
	wh := &Warehouse{
		ID:   DefaultWarehouseID,
		Name: DefaultWarehouseName,
	}
	m.idToWh[wh.ID] = wh
	m.nameToWh[wh.Name] = wh
	metrics.LakeCoordNumWarehouses.WithLabelValues().Set(float64(len(m.idToWh)))
	log.Info("default warehouse initialized", zap.Int64("id", wh.ID), zap.String("name", wh.Name))
}

// GetWarehouse looks a warehouse up by name, missing entries are an error.
func (m *Manager) GetWarehouse(name string) (*Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wh, ok := m.nameToWh[name]
	if !ok {
		return nil, merr.WrapErrWarehouseNotFound(name)
	}
	return wh, nil
}

// GetWarehouseByID looks a warehouse up by id, missing entries are an error.
func (m *Manager) GetWarehouseByID(id int64) (*Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wh, ok := m.idToWh[id]
	if !ok {
		return nil, merr.WrapErrWarehouseNotFound(id)
	}
	return wh, nil
}

// PeekWarehouse is the non-erroring lookup for call sites that tolerate
// absence, it returns nil for unknown names.
func (m *Manager) PeekWarehouse(name string) *Warehouse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameToWh[name]
}

func (m *Manager) PeekWarehouseByID(id int64) *Warehouse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idToWh[id]
}

// ListWarehouses returns a snapshot of all registered warehouses, safe to
// iterate without any lock held.
func (m *Manager) ListWarehouses() []*Warehouse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make([]*Warehouse, 0, len(m.idToWh))
	for _, wh := range m.idToWh {
		ret = append(ret, wh)
	}
	return ret
}

// AddWarehouse registers a warehouse. The reserved default id and name are
// rejected, so are duplicates on either key.
func (m *Manager) AddWarehouse(wh *Warehouse) error {
	if wh.ID == DefaultWarehouseID || wh.Name == DefaultWarehouseName {
		return merr.WrapErrWarehouseReserved(wh.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.idToWh[wh.ID]; ok {
		return merr.WrapErrWarehouseAlreadyExist(wh.ID)
	}
	if _, ok := m.nameToWh[wh.Name]; ok {
		return merr.WrapErrWarehouseAlreadyExist(wh.Name)
	}
	m.idToWh[wh.ID] = wh
	m.nameToWh[wh.Name] = wh
	metrics.LakeCoordNumWarehouses.WithLabelValues().Set(float64(len(m.idToWh)))
	log.Info("warehouse registered",
		zap.Int64("id", wh.ID),
		zap.String("name", wh.Name),
		zap.Int64s("workerGroups", wh.WorkerGroupIDs))
	return nil
}

// DropWarehouse removes a warehouse by id. The default warehouse is never
// removable.
func (m *Manager) DropWarehouse(id int64) error {
	if id == DefaultWarehouseID {
		return merr.WrapErrWarehouseReserved(id, "the default warehouse cannot be dropped")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	wh, ok := m.idToWh[id]
	if !ok {
		return merr.WrapErrWarehouseNotFound(id)
	}
	delete(m.idToWh, id)
	delete(m.nameToWh, wh.Name)
	metrics.LakeCoordNumWarehouses.WithLabelValues().Set(float64(len(m.idToWh)))
	log.Info("warehouse dropped", zap.Int64("id", id), zap.String("name", wh.Name))
	return nil
}

// ResolveWorkerGroup returns the warehouse's first configured worker group.
// A warehouse with no groups yields ok=false, an unknown warehouse an error.
func (m *Manager) ResolveWorkerGroup(warehouseID int64) (int64, bool, error) {
	wh, err := m.GetWarehouseByID(warehouseID)
	if err != nil {
		return 0, false, err
	}
	if len(wh.WorkerGroupIDs) == 0 {
		log.Warn("no worker group configured in warehouse",
			zap.Int64("warehouseID", wh.ID),
			zap.String("warehouseName", wh.Name))
		return 0, false, nil
	}
	return wh.WorkerGroupIDs[0], true, nil
}

// BackgroundWarehouse is the warehouse background tasks run in. It is the
// default warehouse until per-task warehouse binding lands.
func (m *Manager) BackgroundWarehouse() *Warehouse {
	return m.PeekWarehouseByID(DefaultWarehouseID)
}

// CompactionWarehouse is the warehouse compaction jobs are dispatched to.
func (m *Manager) CompactionWarehouse() *Warehouse {
	return m.BackgroundWarehouse()
}
