package main

import (
	"inteligente-backend/cmd/sinisa-cli/commands"
	"inteligente-backend/lib/osutil"
	"inteligente-backend/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "sinisa-cli")
	telemetry.InstrumentPerfStats(ctx)
	telemetry.InitSlog(true)
	commands.ExecuteContext(ctx)
}
