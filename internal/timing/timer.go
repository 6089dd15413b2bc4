package timing

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPrecision is the decimal precision used when none is configured.
	DefaultPrecision = 4

	measurementLogFormat           = "%s took %s"
	averagedMeasurementSuffix      = " (avg. over %d runs)"
	timeoutErrorFormat             = "%s exceeded %s after %d iterations (took %s)"
	perIterationTimeoutErrorFormat = "%s exceeded %s on iteration %d (took %s)"
	rawSecondsFormat               = "%.*fs"
	detailSeparator                = " "
)

// ErrTimeout reports a measured operation that ran past its configured limit.
var ErrTimeout = errors.New("operation timed out")

// MeasureOptions tunes one measurement call.
type MeasureOptions struct {
	// Iterations repeats the operation and reports the average; values below
	// one mean a single run.
	Iterations int
	// Timeout, when positive, bounds the cumulative measured time. The check
	// runs after each iteration returns; the operation is never preempted.
	Timeout time.Duration
	// PerIteration applies Timeout to each iteration instead of the total.
	PerIteration bool
	// Detail is appended after the operation name in verbose mode.
	Detail string
}

// Timer measures wall-clock durations and logs them unit-scaled. The zero
// value is not usable; construct with NewTimer.
type Timer struct {
	precision     int
	verbose       bool
	logger        *zap.Logger
	timingRecords []string
}

// NewTimer builds a timer logging through the supplied logger. A negative
// precision selects DefaultPrecision; a nil logger discards log output.
func NewTimer(logger *zap.Logger, precision int, verbose bool) *Timer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Timer{precision: precision, verbose: verbose, logger: logger}
}

// Measure runs the operation once, logs the elapsed time, and returns it.
func (timer *Timer) Measure(operationName string, operation func()) time.Duration {
	elapsed, _ := timer.MeasureWithOptions(operationName, MeasureOptions{}, operation)
	return elapsed
}

// MeasureWithOptions runs the operation per the options and returns the
// cumulative measured duration. When a timeout trips, the returned error
// wraps ErrTimeout and carries the iteration count and the time taken; the
// measurement is not logged in that case.
func (timer *Timer) MeasureWithOptions(operationName string, options MeasureOptions, operation func()) (time.Duration, error) {
	iterations := options.Iterations
	if iterations < 1 {
		iterations = 1
	}

	var totalElapsed time.Duration
	for iteration := 1; iteration <= iterations; iteration++ {
		startInstant := time.Now()
		operation()
		iterationElapsed := time.Since(startInstant)
		totalElapsed += iterationElapsed

		if options.Timeout <= 0 {
			continue
		}
		if options.PerIteration && iterationElapsed > options.Timeout {
			return totalElapsed, fmt.Errorf("%w: "+perIterationTimeoutErrorFormat, ErrTimeout,
				operationName, timer.formatRawSeconds(options.Timeout), iteration, timer.formatRawSeconds(iterationElapsed))
		}
		if !options.PerIteration && totalElapsed > options.Timeout {
			return totalElapsed, fmt.Errorf("%w: "+timeoutErrorFormat, ErrTimeout,
				operationName, timer.formatRawSeconds(options.Timeout), iteration, timer.formatRawSeconds(totalElapsed))
		}
	}

	averageElapsed := totalElapsed / time.Duration(iterations)
	formattedAverage := FormatDuration(averageElapsed, timer.precision)
	timer.timingRecords = append(timer.timingRecords, formattedAverage)

	subject := operationName
	if timer.verbose && options.Detail != "" {
		subject += detailSeparator + options.Detail
	}
	message := fmt.Sprintf(measurementLogFormat, subject, formattedAverage)
	if iterations > 1 {
		message += fmt.Sprintf(averagedMeasurementSuffix, iterations)
	}
	timer.logger.Info(message)
	return totalElapsed, nil
}

// TimingRecords returns the formatted durations of completed measurements in
// the order they were taken.
func (timer *Timer) TimingRecords() []string {
	return append([]string{}, timer.timingRecords...)
}

// formatRawSeconds renders a duration as plain seconds at the timer's
// precision. Timeout messages report the limit and the elapsed time in this
// form, not unit-scaled.
func (timer *Timer) formatRawSeconds(value time.Duration) string {
	return fmt.Sprintf(rawSecondsFormat, timer.precision, value.Seconds())
}
