// README: Delayed-task abstraction for offer expiry.
package assignment

import "time"

// Scheduler arms a one-shot deferred callback. There is no cancel primitive:
// a stale callback must be a no-op against a job that already progressed,
// which the CAS decline guarantees.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerScheduler runs callbacks on process-local timers. Offers armed before
// a crash are picked up by the expiry sweeper instead.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}
