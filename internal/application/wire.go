package application

import (
	"github.com/encuestaia/backend/internal/application/lead"
	"github.com/encuestaia/backend/internal/application/survey"
	"github.com/google/wire"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	survey.ProviderSet,
	lead.ProviderSet,
)
