package http

const (
	HealthzPath = "/healthz"
	MetricsPath = "/metrics"
	PprofPath   = "/debug/pprof"

	CompactionHistoryPath  = "/compaction/history"
	CompactionDisablePath  = "/compaction/disable"
	CompactionDisabledPath = "/compaction/disabled"
	CompactionTriggerPath  = "/compaction/trigger"
	WarehouseListPath      = "/warehouse/list"
	WarehouseNodesPath     = "/warehouse/nodes"
	SysInfoPath            = "/sysinfo"

	HTTPWarehouseID = "warehouseID"
	HTTPTableID     = "tableID"

	HTTPReturnMessage    = "message"
	HTTPReturnHistory    = "history"
	HTTPReturnTableIDs   = "tableIds"
	HTTPReturnDisabled   = "disabled"
	HTTPReturnPartition  = "partition"
	HTTPReturnForceFull  = "forceFull"
	HTTPReturnWarehouses = "warehouses"
	HTTPReturnNodes      = "nodes"
)
