package renderer

import "time"

// RunContext keeps the frame timing of one run of the loop.
type RunContext struct {
	TargetFPS float64 // 0 disables pacing

	start      time.Time
	last       time.Time
	frameStart time.Time
	frames     uint64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewRunContext(targetFPS float64) *RunContext {
	return newRunContext(targetFPS, time.Now, time.Sleep)
}

func newRunContext(targetFPS float64, now func() time.Time, sleep func(time.Duration)) *RunContext {
	t := now()
	return &RunContext{
		TargetFPS:  targetFPS,
		start:      t,
		last:       t,
		frameStart: t,
		now:        now,
		sleep:      sleep,
	}
}

// Tick starts an iteration and returns the seconds since the previous one.
func (r *RunContext) Tick() float32 {
	t := r.now()
	dt := t.Sub(r.last)
	r.last = t
	r.frameStart = t
	return float32(dt.Seconds())
}

// FrameBudget is the duration of one frame at the target rate.
func (r *RunContext) FrameBudget() time.Duration {
	if r.TargetFPS <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / r.TargetFPS)
}

// Pace counts a presented frame and sleeps what is left of the frame budget.
func (r *RunContext) Pace() {
	r.frames++
	budget := r.FrameBudget()
	if budget == 0 {
		return
	}
	if left := budget - r.now().Sub(r.frameStart); left > 0 {
		r.sleep(left)
	}
}

func (r *RunContext) Frames() uint64 {
	return r.frames
}

func (r *RunContext) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}

func (r *RunContext) AverageFPS() float64 {
	s := r.Elapsed().Seconds()
	if s <= 0 {
		return 0
	}
	return float64(r.frames) / s
}
