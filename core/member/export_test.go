package member

import "time"

// SetNow freezes the clock of the package and returns a func restoring it.
func SetNow(t time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = func() time.Time { return t }
	return func() { nowFunc = orig }
}
