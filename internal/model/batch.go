package model

// Outcome is the final state of a batch.
type Outcome int

const (
	// OutcomeUnresolved means the batch was not moved (no destination configured
	// or the run was cancelled).
	OutcomeUnresolved Outcome = iota
	// OutcomeParsable means the batch was finalized and is ready for publication.
	OutcomeParsable
	// OutcomeRejected means the batch was abandoned as a whole.
	OutcomeRejected
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeParsable:
		return "parsable"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unresolved"
	}
}

// Bucket is a delimiter-keyed output directory and the links it owns.
type Bucket struct {
	Delimiter Delimiter
	Dir       Path
	Links     []Path
}

// Batch is one directory tree processed as a unit.
type Batch struct {
	RunID    string
	Root     Path
	WorkDir  Path
	Buckets  []Bucket
	Outcome  Outcome
	Location Path // where the batch ended up
	Archive  Path
	Manifest Path
	Reason   string
	Files    int
}

// Publishable reports whether at least one bucket holds at least one link.
func (b Batch) Publishable() bool {
	for _, bucket := range b.Buckets {
		if len(bucket.Links) > 0 {
			return true
		}
	}

	return false
}
