package webhook

import "github.com/google/wire"

// ProviderSet webhook ProviderSet
var ProviderSet = wire.NewSet(NewClient)
