package lead

import (
	"github.com/encuestaia/backend/internal/infrastructure/webhook"
	"github.com/google/wire"
)

// ProviderSet 线索应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewDispatcher,
	wire.Bind(new(Sender), new(*webhook.Client)),
)
