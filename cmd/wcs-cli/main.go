package main

import (
	"wcs-backend/cmd/wcs-cli/commands"
	"wcs-backend/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()
	commands.ExecuteContext(ctx)
}
