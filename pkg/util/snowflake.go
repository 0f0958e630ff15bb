package util

import (
	"strconv"
	"time"
)

// discordEpochMillis is the millisecond offset of the platform epoch
// (2015-01-01T00:00:00Z) relative to the Unix epoch.
const discordEpochMillis = 1420070400000

// SnowflakeTimestamp extracts the creation time encoded in a snowflake ID.
// An unparseable ID yields the zero time and false.
func SnowflakeTimestamp(id string) (time.Time, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	ms := int64(n>>22) + discordEpochMillis
	return time.UnixMilli(ms).UTC(), true
}
