package http

import (
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glacierdb/glacierdb/internal/compaction"
	"github.com/glacierdb/glacierdb/internal/warehouse"
	"github.com/glacierdb/glacierdb/pkg/util/funcutil"
	"github.com/glacierdb/glacierdb/pkg/util/merr"
	"github.com/glacierdb/glacierdb/pkg/util/metricsinfo"
)

// Handlers serves the lake coordinator's admin routes. Query routes never
// fail, they answer empty or false when there is nothing to report; only
// malformed input and refused mutations map to error statuses.
type Handlers struct {
	scheduler *compaction.Scheduler
	registry  *warehouse.Manager
	resolver  *warehouse.Resolver
}

func NewHandlers(scheduler *compaction.Scheduler, registry *warehouse.Manager, resolver *warehouse.Resolver) *Handlers {
	return &Handlers{
		scheduler: scheduler,
		registry:  registry,
		resolver:  resolver,
	}
}

// RegisterRoutesTo registers the admin routes to the given router.
func (h *Handlers) RegisterRoutesTo(router gin.IRouter) {
	router.GET(CompactionHistoryPath, wrapHandler(h.handleCompactionHistory))
	router.POST(CompactionDisablePath, wrapHandler(h.handleDisableCompaction))
	router.GET(CompactionDisabledPath, wrapHandler(h.handleDisabledTables))
	router.POST(CompactionTriggerPath, wrapHandler(h.handleTriggerCompaction))
	router.GET(WarehouseListPath, wrapHandler(h.handleListWarehouses))
	router.GET(WarehouseNodesPath, wrapHandler(h.handleWarehouseNodes))
	router.GET(SysInfoPath, wrapHandler(h.handleSysInfo))
}

func (h *Handlers) handleCompactionHistory(c *gin.Context) (any, error) {
	history := h.scheduler.History()
	if history == nil {
		history = []*compaction.CompactionRecord{}
	}
	return gin.H{HTTPReturnHistory: history}, nil
}

func (h *Handlers) handleDisableCompaction(c *gin.Context) (any, error) {
	req := DisableCompactionReq{}
	if err := c.ShouldBind(&req); err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("parse disable request failed: %v", err)
	}
	h.scheduler.DisableTables(req.TableIDs)
	return gin.H{HTTPReturnTableIDs: h.disabledTables()}, nil
}

func (h *Handlers) handleDisabledTables(c *gin.Context) (any, error) {
	if raw, ok := c.GetQuery(HTTPTableID); ok {
		tableID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, merr.WrapErrParameterInvalidMsg("table id %q is not a number", raw)
		}
		return gin.H{
			HTTPTableID:        tableID,
			HTTPReturnDisabled: h.scheduler.IsTableDisabled(tableID),
		}, nil
	}
	return gin.H{HTTPReturnTableIDs: h.disabledTables()}, nil
}

func (h *Handlers) disabledTables() []int64 {
	ids := h.scheduler.DisabledTables()
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

func (h *Handlers) handleTriggerCompaction(c *gin.Context) (any, error) {
	req := TriggerCompactionReq{}
	if err := c.ShouldBind(&req); err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("parse trigger request failed: %v", err)
	}
	if req.DBID <= 0 || req.TableID <= 0 || req.PartitionID <= 0 {
		return nil, merr.WrapErrParameterInvalidMsg("dbId, tableId and partitionId are all required")
	}
	partition := compaction.NewPartitionIdentifier(req.DBID, req.TableID, req.PartitionID)
	if err := h.scheduler.TriggerCompaction(partition, req.ForceFull); err != nil {
		return nil, err
	}
	return gin.H{
		HTTPReturnPartition: partition.String(),
		HTTPReturnForceFull: req.ForceFull,
	}, nil
}

func (h *Handlers) handleListWarehouses(c *gin.Context) (any, error) {
	warehouses := h.registry.ListWarehouses()
	ret := make([]WarehouseDescription, 0, len(warehouses))
	for _, wh := range warehouses {
		ret = append(ret, WarehouseDescription{
			ID:             wh.ID,
			Name:           wh.Name,
			WorkerGroupIDs: wh.WorkerGroupIDs,
		})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return gin.H{HTTPReturnWarehouses: ret}, nil
}

func (h *Handlers) handleWarehouseNodes(c *gin.Context) (any, error) {
	raw := c.DefaultQuery(HTTPWarehouseID, strconv.FormatInt(warehouse.DefaultWarehouseID, 10))
	warehouseID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, merr.WrapErrParameterInvalidMsg("warehouse id %q is not a number", raw)
	}
	nodes, err := h.resolver.AliveComputeNodes(c, warehouseID)
	if err != nil {
		return nil, err
	}
	ret := make([]NodeDescription, 0, len(nodes))
	for _, node := range nodes {
		ret = append(ret, NodeDescription{
			ID:       node.ID(),
			Address:  node.Addr(),
			Hostname: node.Hostname(),
			State:    node.GetState().String(),
			Version:  node.Version().String(),
		})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return gin.H{
		HTTPWarehouseID: warehouseID,
		HTTPReturnNodes: ret,
	}, nil
}

func (h *Handlers) handleSysInfo(c *gin.Context) (any, error) {
	resp := SystemInfoResponse{
		Hardware: metricsinfo.NewHardwareMetrics(funcutil.GetLocalIP()),
	}
	metricsinfo.FillDeployMetricsWithEnv(&resp.Deploy)
	return resp, nil
}
