package audit

import "go.uber.org/fx"

// Module provides the slog backed audit recorder.
var Module = fx.Provide(
	fx.Annotate(NewLogger, fx.As(new(Recorder))),
)
