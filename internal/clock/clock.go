package clock

import "time"

// Clock abstracts time.Now so date guards can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

type Fixed struct {
	t time.Time
}

func NewFixed(t time.Time) Fixed { return Fixed{t: t} }

func (f Fixed) Now() time.Time { return f.t }
