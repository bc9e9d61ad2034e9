package model

// Delimiter is a field separator together with the bucket name it routes to.
type Delimiter struct {
	Name string
	Char rune
}

// IsZero reports whether no delimiter was detected.
func (d Delimiter) IsZero() bool {
	return d.Char == 0
}

// Printable returns the separator as it is written into manifests.
func (d Delimiter) Printable() string {
	return string(d.Char)
}

// DefaultDelimiters is the fixed delimiter alphabet, in bucket order.
func DefaultDelimiters() []Delimiter {
	return []Delimiter{
		{Name: "csv", Char: ','},
		{Name: "semicolon", Char: ';'},
		{Name: "colon", Char: ':'},
		{Name: "pipe", Char: '|'},
		{Name: "tsv", Char: '\t'},
		{Name: "dash", Char: '-'},
	}
}

// DelimiterByChar finds the alphabet entry for char.
func DelimiterByChar(alphabet []Delimiter, char rune) (Delimiter, bool) {
	for _, d := range alphabet {
		if d.Char == char {
			return d, true
		}
	}

	return Delimiter{}, false
}

// DelimiterByName finds the alphabet entry for a bucket name.
func DelimiterByName(alphabet []Delimiter, name string) (Delimiter, bool) {
	for _, d := range alphabet {
		if d.Name == name {
			return d, true
		}
	}

	return Delimiter{}, false
}
