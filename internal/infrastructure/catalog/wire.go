package catalog

import (
	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProvideStore 按配置创建目录存储
func ProvideStore(cfg *config.Config) *Store {
	return NewStore(cfg.CatalogPath())
}

// ProviderSet 目录 ProviderSet
var ProviderSet = wire.NewSet(ProvideStore)
