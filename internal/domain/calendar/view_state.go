package calendar

import "time"

// ViewState is the explicit per-conversation view state: which month is in
// view and which day, if any, is selected. It is passed through the
// service/presentation boundary rather than kept as a hidden global.
type ViewState struct {
	Year     int
	Month    time.Month
	Selected time.Time // zero when no day is selected
}

// ViewStateFor returns the view state showing the month containing t.
func ViewStateFor(t time.Time) ViewState {
	return ViewState{Year: t.Year(), Month: t.Month()}
}

// Shift returns the view state delta months away, with no day selected.
func (v ViewState) Shift(delta int) ViewState {
	y, m := ShiftMonth(v.Year, v.Month, delta)
	return ViewState{Year: y, Month: m}
}
