package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration renders d at a precision suited to its size:
// whole microseconds below 1ms, whole milliseconds below 1s, and
// millisecond-rounded time.Duration text above, e.g. "1.503s".
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(time.Millisecond).String()
	}
}
