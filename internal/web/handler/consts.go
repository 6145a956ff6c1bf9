package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath prefixes every JSON route.
	APIPath = RootPath + "api/"

	// ErrNilDepsFatalLogMsg is used if app, cfg or a required dependency is nil.
	ErrNilDepsFatalLogMsg = "app, cfg or a handler dependency is nil"
)
