package service

import "time"

// FormatTimestamp renders the last update time relative to now, in now's location
func FormatTimestamp(epochSeconds int64, now time.Time) string {
	t := time.Unix(epochSeconds, 0).In(now.Location())

	if sameDay(t, now) {
		return "at " + t.Format("15:04")
	}

	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "yesterday"
	}

	return "a long time ago"
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
