package helper

import (
	"sync"
	"time"
)

var (
	locMu sync.RWMutex
	local *time.Location
)

// SetLocation sets the zone used for "today". nil restores time.Local.
func SetLocation(loc *time.Location) {
	locMu.Lock()
	local = loc
	locMu.Unlock()
}

func Location() *time.Location {
	locMu.RLock()
	defer locMu.RUnlock()
	if local == nil {
		return time.Local
	}
	return local
}

// StartOfDay is local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
