package countdown

import (
	"strconv"
	"time"
)

// Unit sizes in milliseconds.
const (
	msPerSecond = int64(time.Second / time.Millisecond)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// Remaining is the time left until a target, broken down into display units.
type Remaining struct {
	Total   time.Duration // Target minus now; zero or negative once expired
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Expired reports whether the target has been reached or passed.
func (r Remaining) Expired() bool {
	return r.Total <= 0
}

// Compute returns the remaining time from now until target.
// Units are derived with floor division so negative distances decompose
// consistently.
func Compute(target, now time.Time) Remaining {
	distance := target.Sub(now).Milliseconds()
	return Remaining{
		Total:   time.Duration(distance) * time.Millisecond,
		Days:    floorDiv(distance, msPerDay),
		Hours:   floorDiv(floorMod(distance, msPerDay), msPerHour),
		Minutes: floorDiv(floorMod(distance, msPerHour), msPerMinute),
		Seconds: floorDiv(floorMod(distance, msPerMinute), msPerSecond),
	}
}

// FormatUnit renders a unit value, zero-padded to two digits below 10.
// Larger values are never truncated.
func FormatUnit(v int64) string {
	if v >= 0 && v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
