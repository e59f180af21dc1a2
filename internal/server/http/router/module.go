package router

import "go.uber.org/fx"

// Module provides the gin engine with every payment route mounted.
var Module = fx.Provide(Setup)
