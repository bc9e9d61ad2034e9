package model

// Decision is the per-file routing outcome.
type Decision int

const (
	// Pending means no terminal decision has been recorded yet.
	Pending Decision = iota
	// Accepted means the file (or all of its derived sheets) was linked into a bucket.
	Accepted
	// Rejected means the file failed its acceptance test or carries no signal.
	Rejected
	// Skipped means the file was deliberately not processed.
	Skipped
)

// String returns the lower-case decision name.
func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Skipped:
		return "skipped"
	default:
		return "pending"
	}
}

// Terminal reports whether the decision can no longer change.
func (d Decision) Terminal() bool {
	return d != Pending
}

// Candidate is one enumerated file moving through the router.
type Candidate struct {
	Index     int
	Path      Path
	MIME      string // signature label from the byte probe
	Kind      FileKind
	Decision  Decision
	Signal    int
	Delimiter Delimiter
	Links     []Path // bucket links created for this file
	Reason    string
}

// Decide records a terminal decision. Decisions already recorded are kept.
func (c Candidate) Decide(decision Decision, reason string) Candidate {
	if c.Decision.Terminal() {
		return c
	}

	c.Decision = decision
	c.Reason = reason

	return c
}
