package scheduler

// MetricsRecorder receives scheduling events for the metrics backend.
// A nil recorder is replaced by a no-op.
type MetricsRecorder interface {
	RecordJobStarted(kind string)
	RecordJobCompleted(kind string, durationSeconds float64)
	RecordJobCancelled(kind string)
	RecordJobsRecovered(count int)
	RecordYield(resourceKind string, amount int)
}

type nopMetrics struct{}

func (nopMetrics) RecordJobStarted(string)            {}
func (nopMetrics) RecordJobCompleted(string, float64) {}
func (nopMetrics) RecordJobCancelled(string)          {}
func (nopMetrics) RecordJobsRecovered(int)            {}
func (nopMetrics) RecordYield(string, int)            {}

// NopMetrics returns a recorder that discards everything
func NopMetrics() MetricsRecorder {
	return nopMetrics{}
}
