package rowkey

import (
	"math"
	"strconv"
)

// Separator splits the user id from the inverted timestamp inside a row key.
// A user id containing this character would make prefix-scan boundaries
// ambiguous, so the hot formatter rejects such ids before encoding.
const Separator = "#"

// sentinelMS is 3000-01-01T00:00:00Z in milliseconds. It is a constant offset
// for the timestamp inversion, not a real deadline: keys for timestamps beyond
// it are still produced but are only advisory-ordered.
const sentinelMS = int64(32503680000000)

// Encode derives the hot-path row key for (userID, eventTimestamp):
//
//	userID + "#" + decimal(sentinelMS - floor(eventTimestamp*1000))
//
// Subtracting the millisecond timestamp from the sentinel inverts the ordering,
// so for a fixed user the most recent event has the lexicographically smallest
// key and a forward prefix scan returns events newest-first with no sort step.
// Pure and deterministic for any finite timestamp; sub-millisecond precision
// is truncated.
func Encode(userID string, eventTimestamp float64) []byte {
	inverted := sentinelMS - int64(math.Floor(eventTimestamp*1000))
	return []byte(userID + Separator + strconv.FormatInt(inverted, 10))
}

// Prefix returns the scan prefix covering every row key of one user.
func Prefix(userID string) []byte {
	return []byte(userID + Separator)
}
