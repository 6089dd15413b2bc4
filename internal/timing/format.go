// Package timing measures operations and reports unit-scaled durations.
package timing

import (
	"fmt"
	"time"
)

const (
	nanosecondsPerMicrosecond = int64(time.Microsecond)
	nanosecondsPerMillisecond = int64(time.Millisecond)
	nanosecondsPerSecond      = int64(time.Second)
	nanosecondsPerMinute      = int64(time.Minute)
	nanosecondsPerHour        = int64(time.Hour)

	nanosecondsFormat  = "%.2fns"
	microsecondsFormat = "%.*fμs"
	millisecondsFormat = "%.*fms"
	shortSecondsFormat = "%.1fs"
	wholeSecondsFormat = "%ds"
	minutesFormat      = "%dm"
	hoursFormat        = "%dh"
	componentSeparator = " "
)

// FormatDuration renders an elapsed duration in the largest unit that keeps
// the value readable. Sub-microsecond durations always carry two decimals;
// microseconds and milliseconds honor precision; seconds carry one decimal
// below ten seconds and none above; minutes and hours decompose into
// components with zero-valued components omitted ("1h 5s", never "1h 0m 5s").
func FormatDuration(elapsed time.Duration, precision int) string {
	if precision < 0 {
		precision = 0
	}
	totalNanoseconds := elapsed.Nanoseconds()
	switch {
	case totalNanoseconds < nanosecondsPerMicrosecond:
		return fmt.Sprintf(nanosecondsFormat, float64(totalNanoseconds))
	case totalNanoseconds < nanosecondsPerMillisecond:
		return fmt.Sprintf(microsecondsFormat, precision, float64(totalNanoseconds)/float64(nanosecondsPerMicrosecond))
	case totalNanoseconds < nanosecondsPerSecond:
		return fmt.Sprintf(millisecondsFormat, precision, float64(totalNanoseconds)/float64(nanosecondsPerMillisecond))
	case totalNanoseconds < 10*nanosecondsPerSecond:
		return fmt.Sprintf(shortSecondsFormat, float64(totalNanoseconds)/float64(nanosecondsPerSecond))
	case totalNanoseconds < nanosecondsPerMinute:
		return fmt.Sprintf(wholeSecondsFormat, totalNanoseconds/nanosecondsPerSecond)
	case totalNanoseconds < nanosecondsPerHour:
		minutes := totalNanoseconds / nanosecondsPerMinute
		seconds := (totalNanoseconds % nanosecondsPerMinute) / nanosecondsPerSecond
		formatted := fmt.Sprintf(minutesFormat, minutes)
		if seconds > 0 {
			formatted += componentSeparator + fmt.Sprintf(wholeSecondsFormat, seconds)
		}
		return formatted
	default:
		hours := totalNanoseconds / nanosecondsPerHour
		minutes := (totalNanoseconds % nanosecondsPerHour) / nanosecondsPerMinute
		seconds := (totalNanoseconds % nanosecondsPerMinute) / nanosecondsPerSecond
		formatted := fmt.Sprintf(hoursFormat, hours)
		if minutes > 0 {
			formatted += componentSeparator + fmt.Sprintf(minutesFormat, minutes)
		}
		if seconds > 0 {
			formatted += componentSeparator + fmt.Sprintf(wholeSecondsFormat, seconds)
		}
		return formatted
	}
}
