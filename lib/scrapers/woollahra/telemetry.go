package woollahra

import (
	"wcs-backend/lib/restyutil"
	"wcs-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("wcs.lib.scrapers.woollahra")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
