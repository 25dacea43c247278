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

package warehouse

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/glacierdb/glacierdb/pkg/metrics"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
)

type ManagerSuite struct {
	suite.Suite

	mgr *Manager
}

func (s *ManagerSuite) SetupTest() {
	s.mgr = NewManager()
	s.mgr.InitDefaultWarehouse()
}

func (s *ManagerSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *ManagerSuite) TestDefaultWarehouse() {
	// The default warehouse is always resolvable by both keys.
	byName, err := s.mgr.GetWarehouse(DefaultWarehouseName)
	s.NoError(err)
	byID, err := s.mgr.GetWarehouseByID(DefaultWarehouseID)
	s.NoError(err)
	s.Same(byName, byID)
	s.EqualValues(DefaultWarehouseID, byName.ID)
	s.Equal(DefaultWarehouseName, byName.Name)

	// Re-initialization is a no-op.
	s.mgr.InitDefaultWarehouse()
	s.Len(s.mgr.ListWarehouses(), 1)

	s.Same(byID, s.mgr.BackgroundWarehouse())
	s.Same(byID, s.mgr.CompactionWarehouse())
}

func (s *ManagerSuite) TestInitConflict() {
	mgr := NewManager()
	mgr.idToWh[DefaultWarehouseID] = &Warehouse{ID: DefaultWarehouseID, Name: "rogue"}
	s.Panics(mgr.InitDefaultWarehouse)
}

func (s *ManagerSuite) TestLookupUnknown() {
	_, err := s.mgr.GetWarehouse("nope")
	s.ErrorIs(err, merr.ErrWarehouseNotFound)
	_, err = s.mgr.GetWarehouseByID(42)
	s.ErrorIs(err, merr.ErrWarehouseNotFound)

	s.Nil(s.mgr.PeekWarehouse("nope"))
	s.Nil(s.mgr.PeekWarehouseByID(42))
}

func (s *ManagerSuite) TestAddWarehouse() {
	wh := &Warehouse{ID: 1, Name: "wh1", WorkerGroupIDs: []int64{11}}
	s.NoError(s.mgr.AddWarehouse(wh))
	s.Len(s.mgr.ListWarehouses(), 2)
	s.EqualValues(2, testutil.ToFloat64(metrics.LakeCoordNumWarehouses.WithLabelValues()))

	got, err := s.mgr.GetWarehouse("wh1")
	s.NoError(err)
	s.Same(wh, got)

	s.Run("duplicate id", func() {
		s.NoError(s.mgr.AddWarehouse(wh))
		err := s.mgr.AddWarehouse(&Warehouse{ID: 1, Name: "other"})
		s.ErrorIs(err, merr.ErrWarehouseAlreadyExist)
	})
	s.Run("duplicate name", func() {
		s.NoError(s.mgr.AddWarehouse(wh))
		err := s.mgr.AddWarehouse(&Warehouse{ID: 2, Name: "wh1"})
		s.ErrorIs(err, merr.ErrWarehouseAlreadyExist)
	})
	s.Run("reserved id", func() {
		err := s.mgr.AddWarehouse(&Warehouse{ID: DefaultWarehouseID, Name: "other"})
		s.ErrorIs(err, merr.ErrWarehouseReserved)
	})
	s.Run("reserved name", func() {
		err := s.mgr.AddWarehouse(&Warehouse{ID: 3, Name: DefaultWarehouseName})
		s.ErrorIs(err, merr.ErrWarehouseReserved)
	})
}

func (s *ManagerSuite) TestDropWarehouse() {
	s.NoError(s.mgr.AddWarehouse(&Warehouse{ID: 1, Name: "wh1"}))

	s.NoError(s.mgr.DropWarehouse(1))
	s.Len(s.mgr.ListWarehouses(), 1)
	_, err := s.mgr.GetWarehouse("wh1")
	s.ErrorIs(err, merr.ErrWarehouseNotFound)

	s.ErrorIs(s.mgr.DropWarehouse(1), merr.ErrWarehouseNotFound)
	s.ErrorIs(s.mgr.DropWarehouse(DefaultWarehouseID), merr.ErrWarehouseReserved)
}

func (s *ManagerSuite) TestResolveWorkerGroup() {
	s.NoError(s.mgr.AddWarehouse(&Warehouse{ID: 1, Name: "wh1", WorkerGroupIDs: []int64{11, 12}}))

	groupID, ok, err := s.mgr.ResolveWorkerGroup(1)
	s.NoError(err)
	s.True(ok)
	s.EqualValues(11, groupID)

	// The default warehouse carries no explicit group.
	_, ok, err = s.mgr.ResolveWorkerGroup(DefaultWarehouseID)
	s.NoError(err)
	s.False(ok)

	_, _, err = s.mgr.ResolveWorkerGroup(42)
	s.ErrorIs(err, merr.ErrWarehouseNotFound)
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}
