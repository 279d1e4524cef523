package logic

import "time"

// Elapsed reports whether at least interval ticks have passed since start.
// The subtraction is done in 32 bits so a counter wrap between start and now
// still yields the true distance.
func Elapsed(start, now Millis, interval uint32) bool {
	return uint32(now-start) >= interval
}

// Clock converts wall-clock samples into Millis relative to an epoch.
type Clock struct {
	epoch time.Time
}

// NewClock returns a Clock whose tick 0 is epoch.
func NewClock(epoch time.Time) Clock {
	return Clock{epoch: epoch}
}

// Millis returns the tick for t. The conversion truncates to 32 bits, so
// the result wraps after about 49.7 days exactly as a hardware counter does.
func (c Clock) Millis(t time.Time) Millis {
	return Millis(t.Sub(c.epoch).Milliseconds())
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
}

// Heartbeat decides when a periodic liveness event is due.
type Heartbeat struct {
	interval  time.Duration
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a heartbeat schedule starting at startTime.
// An interval <= 0 disables it.
func NewHeartbeat(interval time.Duration, startTime time.Time) *Heartbeat {
	return &Heartbeat{interval: interval, startTime: startTime, last: startTime}
}

// Check returns heartbeat data if the interval has elapsed since the last
// heartbeat (or startup). Returns nil if disabled or not yet due.
func (h *Heartbeat) Check(now time.Time) *HeartbeatData {
	if h.interval <= 0 {
		return nil
	}
	if now.Sub(h.last) < h.interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
	}
}
