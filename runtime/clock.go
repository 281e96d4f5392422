package runtime

import (
	"time"
	"tpa-lab/contract"
)

// SystemClock is the wall clock. time.Now carries a monotonic reading,
// so durations computed from it are immune to wall clock jumps.
type SystemClock struct{}

var _ contract.Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) contract.Timer {
	return time.AfterFunc(d, f)
}

func (SystemClock) NewTicker(d time.Duration) contract.Ticker {
	return systemTicker{ticker: time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t systemTicker) C() <-chan time.Time { return t.ticker.C }

func (t systemTicker) Stop() { t.ticker.Stop() }
