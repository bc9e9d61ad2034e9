// Package model defines the data structures shared by the curation pipeline.
package model

// Path represents a file system path.
type Path string

// String returns the path as a plain string.
func (p Path) String() string {
	return string(p)
}

// FileKind is the refined content tag assigned by the classifier.
type FileKind int

const (
	// KindUnknown marks a candidate that has not been classified yet, or a
	// signature the classifier has no mapping for.
	KindUnknown FileKind = iota
	// KindCSV is delimited text (the default for text without other markers).
	KindCSV
	// KindJSON is text that opens like a JSON object.
	KindJSON
	// KindSQL is a textual SQL dump.
	KindSQL
	// KindSpreadsheet is a workbook (xlsx / xls).
	KindSpreadsheet
	// KindArchive is a compressed container (zip, 7z, rar).
	KindArchive
	// KindOther is any other recognized binary signature.
	KindOther
)

// String returns the tag used in logs and reports.
func (k FileKind) String() string {
	switch k {
	case KindCSV:
		return "csv"
	case KindJSON:
		return "json"
	case KindSQL:
		return "sql"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindArchive:
		return "archive"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}
