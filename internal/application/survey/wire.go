package survey

import (
	"github.com/encuestaia/backend/internal/infrastructure/catalog"
	"github.com/google/wire"
)

// ProviderSet 问卷应用层 ProviderSet
var ProviderSet = wire.NewSet(
	NewQuestionGenerator,
	NewReportGenerator,
	NewService,
	wire.Bind(new(CatalogSource), new(*catalog.Store)),
)
