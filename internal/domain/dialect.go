package domain

import (
	"slices"
	"unicode"
)

// preferredDelimiters breaks ties between equally consistent separators.
var preferredDelimiters = []rune{',', '\t', ';', ' ', ':'}

const (
	frequencyChunk     = 10
	asciiLimit         = 127
	minConsistency     = 0.9
	consistencyDecline = 0.01
)

// sniffDelimiter infers the field separator of sample among allowed. Quoted
// field adjacency is tried first, then per-line frequency consistency.
func sniffDelimiter(sample []rune, allowed []rune) (rune, bool) {
	if d, ok := delimiterFromQuotes(sample, allowed); ok {
		return d, true
	}

	return delimiterFromFrequency(sample, allowed)
}

type quoteMatch struct {
	delim    rune
	hasDelim bool
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isQuoteRune(r rune) bool {
	return r == '"' || r == '\''
}

func isSeparatorRune(r rune) bool {
	return r != '\n' && !isQuoteRune(r) && !isWordRune(r)
}

func atLineStart(data []rune, i int) bool {
	return i == 0 || data[i-1] == '\n'
}

func atLineEnd(data []rune, i int) bool {
	return i == len(data) || data[i] == '\n'
}

// closeQuote returns the index of the first quote rune equal to data[open]
// after open that satisfies follows, or -1.
func closeQuote(data []rune, open int, follows func(next int) bool) int {
	for k := open + 1; k < len(data); k++ {
		if data[k] == data[open] && follows(k+1) {
			return k
		}
	}

	return -1
}

// scanSeparatorQuoted finds `<sep>[ ]"…"<sep>` runs.
func scanSeparatorQuoted(data []rune) []quoteMatch {
	var out []quoteMatch

	for i := 0; i < len(data); i++ {
		if !isSeparatorRune(data[i]) {
			continue
		}

		open := i + 1
		if open < len(data) && data[open] == ' ' {
			open++
		}

		if open >= len(data) || !isQuoteRune(data[open]) {
			continue
		}

		sep := data[i]

		k := closeQuote(data, open, func(next int) bool { return next < len(data) && data[next] == sep })
		if k < 0 {
			continue
		}

		out = append(out, quoteMatch{delim: sep, hasDelim: true})
		i = k + 1
	}

	return out
}

// lineQuote returns the opening quote position for a match anchored at a line
// start, either at i itself or just after a newline at i.
func lineQuote(data []rune, i int) int {
	if atLineStart(data, i) && isQuoteRune(data[i]) {
		return i
	}

	if data[i] == '\n' && i+1 < len(data) && isQuoteRune(data[i+1]) {
		return i + 1
	}

	return -1
}

// scanQuotedSeparator finds `^"…"<sep>[ ]` runs.
func scanQuotedSeparator(data []rune) []quoteMatch {
	var out []quoteMatch

	for i := 0; i < len(data); i++ {
		open := lineQuote(data, i)
		if open < 0 {
			continue
		}

		k := closeQuote(data, open, func(next int) bool { return next < len(data) && isSeparatorRune(data[next]) })
		if k < 0 {
			continue
		}

		out = append(out, quoteMatch{delim: data[k+1], hasDelim: true})

		end := k + 2
		if end < len(data) && data[end] == ' ' {
			end++
		}

		i = end - 1
	}

	return out
}

// scanSeparatorQuotedLine finds `<sep>[ ]"…"$` runs.
func scanSeparatorQuotedLine(data []rune) []quoteMatch {
	var out []quoteMatch

	for i := 0; i < len(data); i++ {
		if !isSeparatorRune(data[i]) {
			continue
		}

		open := i + 1
		if open < len(data) && data[open] == ' ' {
			open++
		}

		if open >= len(data) || !isQuoteRune(data[open]) {
			continue
		}

		k := closeQuote(data, open, func(next int) bool { return atLineEnd(data, next) })
		if k < 0 {
			continue
		}

		out = append(out, quoteMatch{delim: data[i], hasDelim: true})
		i = k
	}

	return out
}

// scanQuotedLine finds whole quoted lines `^"…"$`, which carry no separator.
func scanQuotedLine(data []rune) []quoteMatch {
	var out []quoteMatch

	for i := 0; i < len(data); i++ {
		open := lineQuote(data, i)
		if open < 0 {
			continue
		}

		k := closeQuote(data, open, func(next int) bool { return atLineEnd(data, next) })
		if k < 0 {
			continue
		}

		out = append(out, quoteMatch{})
		i = k
	}

	return out
}

func delimiterFromQuotes(data []rune, allowed []rune) (rune, bool) {
	var matches []quoteMatch

	for _, scan := range []func([]rune) []quoteMatch{
		scanSeparatorQuoted,
		scanQuotedSeparator,
		scanSeparatorQuotedLine,
		scanQuotedLine,
	} {
		if matches = scan(data); len(matches) > 0 {
			break
		}
	}

	counts := map[rune]int{}

	var order []rune

	for _, match := range matches {
		if !match.hasDelim || !slices.Contains(allowed, match.delim) {
			continue
		}

		if counts[match.delim] == 0 {
			order = append(order, match.delim)
		}

		counts[match.delim]++
	}

	best, bestCount := rune(0), 0

	for _, d := range order {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}

	return best, bestCount > 0
}

type frequencyMode struct {
	freq  int
	count int
}

// frequencyTable records how many lines had each per-line count of a rune,
// keeping first-seen order for ties.
type frequencyTable struct {
	counts map[int]int
	order  []int
}

func (t *frequencyTable) add(freq int) {
	if t.counts == nil {
		t.counts = map[int]int{}
	}

	if _, ok := t.counts[freq]; !ok {
		t.order = append(t.order, freq)
	}

	t.counts[freq]++
}

// mode returns the most common per-line count, its weight reduced by all
// other observations. ok is false for runes never seen.
func (t *frequencyTable) mode() (frequencyMode, bool) {
	if len(t.order) == 0 || (len(t.order) == 1 && t.order[0] == 0) {
		return frequencyMode{}, false
	}

	best := t.order[0]
	for _, freq := range t.order[1:] {
		if t.counts[freq] > t.counts[best] {
			best = freq
		}
	}

	rest := 0

	for _, freq := range t.order {
		if freq != best {
			rest += t.counts[freq]
		}
	}

	return frequencyMode{freq: best, count: t.counts[best] - rest}, true
}

func splitNonEmptyLines(data []rune) [][]rune {
	var lines [][]rune

	start := 0

	for i, r := range data {
		if r == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}

			start = i + 1
		}
	}

	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}

// delimiterFromFrequency looks for an ASCII rune that appears the same number
// of times on (nearly) every line, growing the sample ten lines at a time.
func delimiterFromFrequency(data []rune, allowed []rune) (rune, bool) {
	lines := splitNonEmptyLines(data)
	chunk := min(frequencyChunk, len(lines))

	var (
		tables [asciiLimit]frequencyTable
		modes  [asciiLimit]*frequencyMode
	)

	delims := map[rune]frequencyMode{}
	iteration := 0

	for start, end := 0, chunk; start < len(lines); start, end = end, end+chunk {
		iteration++

		for _, line := range lines[start:min(end, len(lines))] {
			var counts [asciiLimit]int

			for _, r := range line {
				if r >= 0 && r < asciiLimit {
					counts[r]++
				}
			}

			for c := range tables {
				tables[c].add(counts[c])
			}
		}

		for c := range tables {
			if mode, ok := tables[c].mode(); ok {
				modes[c] = &mode
			}
		}

		total := float64(min(chunk*iteration, len(lines)))

		for consistency := 1.0; len(delims) == 0 && consistency >= minConsistency; consistency -= consistencyDecline {
			for c, mode := range modes {
				if mode == nil || mode.freq <= 0 || mode.count <= 0 {
					continue
				}

				if float64(mode.count)/total >= consistency && slices.Contains(allowed, rune(c)) {
					delims[rune(c)] = *mode
				}
			}
		}

		if len(delims) == 1 {
			for d := range delims {
				return d, true
			}
		}
	}

	if len(delims) == 0 {
		return 0, false
	}

	for _, d := range preferredDelimiters {
		if _, ok := delims[d]; ok {
			return d, true
		}
	}

	var (
		best     rune
		bestMode frequencyMode
		found    bool
	)

	for d, mode := range delims {
		if !found || mode.freq > bestMode.freq ||
			(mode.freq == bestMode.freq && (mode.count > bestMode.count || (mode.count == bestMode.count && d > best))) {
			best, bestMode, found = d, mode, true
		}
	}

	return best, true
}
