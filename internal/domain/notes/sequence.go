package notes

import (
	"fmt"
	"regexp"
	"strconv"
)

var sequenceSuffix = regexp.MustCompile(`-S(\d+)$`)

// FormatSleepStudyID renders the human-readable id for an allocated sequence
// number: "P0001" + 1 -> "P0001-S001". The sequence is left-zero-padded to at
// least three digits and never truncated ("P0001" + 1000 -> "P0001-S1000").
func FormatSleepStudyID(patientID string, seq int64) string {
	return fmt.Sprintf("%s-S%03d", patientID, seq)
}

// ParseSequence extracts the numeric suffix from a sleep-study id. It returns
// false when the id does not carry a "-S{digits}" suffix.
func ParseSequence(sleepStudyID string) (int64, bool) {
	m := sequenceSuffix.FindStringSubmatch(sleepStudyID)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
