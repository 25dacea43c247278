package dependency

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/glacierdb/glacierdb/internal/kv"
	kvfactory "github.com/glacierdb/glacierdb/internal/util/dependency/kv"
	"github.com/glacierdb/glacierdb/pkg/log"
	"github.com/glacierdb/glacierdb/pkg/util/paramtable"
)

const (
	metaTypeEtcd = paramtable.MetaStoreTypeEtcd
	metaTypeTikv = paramtable.MetaStoreTypeTiKV
)

// DefaultFactory hands out the meta store connections shared by the
// coordinator components.
type DefaultFactory struct {
	metaFactory  kvfactory.Factory
	watchFactory *kvfactory.ETCDFactory
}

// Only for test
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{
		metaFactory:  kvfactory.NewETCDFactory(),
		watchFactory: kvfactory.NewETCDFactory(),
	}
}

// NewFactory creates a new instance of the DefaultFactory type. The backing
// meta store is picked on Init.
func NewFactory() *DefaultFactory {
	return &DefaultFactory{}
}

// Init binds the factory to the configured meta store backend.
func (f *DefaultFactory) Init(params *paramtable.ComponentParam) {
	// skip if a backend was already bound
	if f.metaFactory != nil {
		return
	}
	if err := f.initMeta(params); err != nil {
		panic(err)
	}
}

func (f *DefaultFactory) initMeta(params *paramtable.ComponentParam) error {
	// At the moment watch needs to be etcd only
	f.watchFactory = kvfactory.NewETCDFactory()

	metaType := params.MetaStoreCfg.MetaStoreType.GetValue()
	log.Info("try to init metastore", zap.String("metaType", metaType))
	switch metaType {
	case metaTypeEtcd:
		if factory := kvfactory.NewETCDFactory(); factory != nil {
			f.metaFactory = factory
		}
	case metaTypeTikv:
		if factory := kvfactory.NewTiKVFactory(); factory != nil {
			f.metaFactory = factory
		}
	default:
		return errors.Newf("meta type %s is invalid", metaType)
	}
	if f.metaFactory == nil || f.watchFactory == nil {
		return errors.New("failed to init the metastore factory, look into GlacierDB logs for the cause")
	}
	return nil
}

func (f *DefaultFactory) NewMetaKv() kv.MetaKv {
	return f.metaFactory.NewMetaKv()
}

func (f *DefaultFactory) NewTxnKV() kv.TxnKV {
	return f.metaFactory.NewTxnKV()
}

func (f *DefaultFactory) NewWatchKV() kv.WatchKV {
	return f.watchFactory.NewWatchKV()
}

func (f *DefaultFactory) CloseKV() {
	f.metaFactory.CloseKV()
	f.watchFactory.CloseKV()
}

// Factory is the dependency surface a coordinator receives at construction.
type Factory interface {
	kvfactory.Factory
	Init(p *paramtable.ComponentParam)
	NewWatchKV() kv.WatchKV
}
