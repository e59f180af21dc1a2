package config

import "go.uber.org/fx"

// Module provides the *Config parsed once at startup.
var Module = fx.Provide(Load)
