package clock

import "time"

// Clock abstracts time so controllers and the daemon ticker stay
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleeper abstracts poll-loop delays. Tests substitute a no-op sleeper so
// reconciliation loops run at full speed.
type Sleeper interface {
	Sleep(d time.Duration)
}

type SystemSleeper struct{}

func (SystemSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
