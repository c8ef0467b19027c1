// Package clock lets tests freeze time for approval timestamps and
// transaction builders.
package clock

import "time"

var NowFunc = time.Now

func Now() time.Time { return NowFunc() }

// NowMillis returns the current unix time in milliseconds, the timestamp unit
// used by node transactions.
func NowMillis() int64 { return NowFunc().UnixMilli() }
