package model

// Chunk is a contiguous span of raw dump text ending at a statement terminator,
// or the trailing remainder of the stream when Partial is set.
type Chunk struct {
	Text    string
	Line    int // 1-based line the chunk starts on
	Partial bool
}

// Table accumulates the rows extracted for one table of one source file.
type Table struct {
	Name     string
	Columns  []string
	Rows     [][]string
	Output   Path
	RowCount int // rows flushed so far
}
