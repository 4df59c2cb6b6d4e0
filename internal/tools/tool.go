package tools

import "studiodesk/internal/tools/shared"

// Aliases so callers outside the tool packages only import tools
type (
	Tool       = shared.Tool
	Definition = shared.Definition
	Category   = shared.Category
	Args       = shared.Args
	Deps       = shared.Deps
)

const (
	CategorySupport   = shared.CategorySupport
	CategoryDashboard = shared.CategoryDashboard
)
