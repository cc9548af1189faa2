package model

// SessionStatus represents the lifecycle state of one search session
type SessionStatus string

const (
	// StatusIdle means no search has been submitted yet, or state was reset
	StatusIdle SessionStatus = "Idle"

	// StatusSearching means candidate IDs or object records are being fetched
	StatusSearching SessionStatus = "Searching"

	// StatusResultsReady means at least one viewable artwork was resolved
	StatusResultsReady SessionStatus = "ResultsReady"

	// StatusEmpty means the search endpoint returned no candidate IDs
	StatusEmpty SessionStatus = "Empty"

	// StatusFailed means the search endpoint itself failed
	StatusFailed SessionStatus = "Failed"

	// StatusAllFailed means candidates were returned but every object fetch failed
	StatusAllFailed SessionStatus = "AllFailed"
)

// String returns the string representation of SessionStatus
func (ss SessionStatus) String() string {
	return string(ss)
}

// IsActive returns true if the session still has work in flight
func (ss SessionStatus) IsActive() bool {
	return ss == StatusSearching
}

// IsTerminal returns true if the session reached a reported end state
func (ss SessionStatus) IsTerminal() bool {
	return ss == StatusResultsReady || ss == StatusEmpty || ss == StatusFailed || ss == StatusAllFailed
}
