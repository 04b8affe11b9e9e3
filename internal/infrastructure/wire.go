package infrastructure

import (
	"github.com/encuestaia/backend/internal/infrastructure/catalog"
	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
	"github.com/encuestaia/backend/internal/infrastructure/storage"
	"github.com/encuestaia/backend/internal/infrastructure/watcher"
	"github.com/encuestaia/backend/internal/infrastructure/webhook"
	"github.com/encuestaia/backend/internal/infrastructure/websocket"
	"github.com/google/wire"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	catalog.ProviderSet,
	llm.ProviderSet,
	watcher.ProviderSet,
	webhook.ProviderSet,
	websocket.ProviderSet,
)
