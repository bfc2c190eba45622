package ephemeris

import "time"

// ElementSet is one two-line element set for the tracked object, replaced
// wholesale on every refresh.
type ElementSet struct {
	NORADID   int
	Name      string
	Epoch     time.Time
	Line1     string
	Line2     string
	Source    string
	FetchedAt time.Time
}

// FormatError reports element text from which two valid element lines could
// not be extracted. Recoverable: the previous element set stays in effect.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "malformed element set: " + e.Reason
}
