// Package timezone keeps every timestamp in the portal on the
// association's wall clock.
//
// The location is read once from the APP_TIMEZONE environment variable
// when the package is imported; it must be a standard IANA name such as
// "UTC", "Asia/Dhaka" or "Europe/London". An unset or invalid value
// falls back to UTC.
//
//	now := timezone.Now()                    // current time in the app zone
//	local := timezone.ToAppTime(someTime)    // shift any time into the app zone
//	s := timezone.Format(now, "2006-01-02")  // format in the app zone
//	t, err := timezone.Parse("2006-01-02", "2026-01-01")
//
// The monthly posting-confirmation check compares calendar months, so
// the choice of zone decides when a month rolls over for members.
package timezone
