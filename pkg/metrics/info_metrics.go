package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	infoMutex  sync.Mutex
	engineType string
	metaType   string

	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Name:      "build_info",
			Help:      "Build information of GlacierDB",
		},
		[]string{
			"version",
			"built",
			"git_commit",
		},
	)

	RuntimeInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Name:      "runtime_info",
			Help:      "Runtime information of GlacierDB",
		},
		[]string{
			"engine",
			"meta",
		},
	)

	ThreadNum = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: glacierDBNamespace,
			Name:      "thread_num",
			Help:      "the actual thread number of GlacierDB process",
		},
	)
)

// RegisterEngineType registers the type of the storage engine
func RegisterEngineType(engine string) {
	infoMutex.Lock()
	defer infoMutex.Unlock()
	engineType = engine
	updateRuntimeInfo()
}

// RegisterMetaType registers the type of meta
func RegisterMetaType(meta string) {
	infoMutex.Lock()
	defer infoMutex.Unlock()
	metaType = meta
	updateRuntimeInfo()
}

// updateRuntimeInfo update the runtime info of GlacierDB if every label is ready.
func updateRuntimeInfo() {
	if engineType == "" || metaType == "" {
		return
	}
	RuntimeInfo.WithLabelValues(engineType, metaType).Set(1)
}
