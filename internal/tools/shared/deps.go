package shared

import (
	"studiodesk/internal/services/dashboard"
	"studiodesk/internal/services/support"
	"studiodesk/pkg/logger"
)

// Deps bundles dependencies required by concrete tool implementations
type Deps struct {
	Support   *support.Service
	Dashboard *dashboard.Service
	Log       *logger.Logger
}
