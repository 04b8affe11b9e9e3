package watcher

import (
	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProvideEventBus 提供事件总线实例
func ProvideEventBus() events.EventBus {
	return NewEventBus()
}

// ProvideCatalogWatcher 提供问卷目录覆盖文件监听器
// 配置关闭热加载时返回 nil，由 App 跳过启动
func ProvideCatalogWatcher(cfg *config.Config, eventBus events.EventBus) (*FileWatcher, error) {
	if !cfg.Catalog.Watch {
		return nil, nil
	}
	return NewFileWatcher(DefaultWatchConfig(cfg.CatalogPath()), eventBus)
}

// ProviderSet 事件总线与文件监听 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideCatalogWatcher,
)
