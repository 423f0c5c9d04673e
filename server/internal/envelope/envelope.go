package envelope

import (
	"time"

	"github.com/opsdeck/opsdeck/pkg/types"
)

// TimeFormat is the textual form of every timestamp in a response.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Now returns the current time. Overridden in tests.
var Now = time.Now

// Timestamp formats t in UTC using TimeFormat.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Stamp returns the current time formatted with TimeFormat.
func Stamp() string {
	return Timestamp(Now())
}

// OK returns a successful envelope stamped now.
func OK() types.Envelope {
	return types.Envelope{Success: true, Timestamp: Stamp()}
}

// Degraded returns an envelope for a payload that was substituted with
// synthetic or default data. success is false when the source itself was
// unreachable, true when the substitution is an expected mode.
func Degraded(success bool, note string) types.Envelope {
	return types.Envelope{Success: success, Message: note, Timestamp: Stamp()}
}

// Failed returns an unsuccessful envelope carrying msg as the error text.
func Failed(msg string) types.Envelope {
	return types.Envelope{Success: false, Error: msg, Timestamp: Stamp()}
}
