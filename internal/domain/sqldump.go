package domain

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

var (
	insertMarker      = regexp.MustCompile(`(?i)insert`)
	tableNameReplacer = strings.NewReplacer("/", "_", "\\", "_")
)

// Chunks splits a dump into statement chunks. A chunk ends with the line
// whose trimmed content ends in ";"; trailing text without a terminator is
// yielded last with Partial set. Chunk texts concatenate back to the input.
func Chunks(r io.Reader) iter.Seq2[m.Chunk, error] {
	return func(yield func(m.Chunk, error) bool) {
		reader := bufio.NewReader(r)

		var buf strings.Builder

		line, start := 0, 1

		for {
			text, err := reader.ReadString('\n')
			if text != "" {
				line++

				if buf.Len() == 0 {
					start = line
				}

				buf.WriteString(text)

				if strings.HasSuffix(strings.TrimSpace(text), ";") {
					if !yield(m.Chunk{Text: buf.String(), Line: start}, nil) {
						return
					}

					buf.Reset()
				}
			}

			if errors.Is(err, io.EOF) {
				break
			}

			if err != nil {
				yield(m.Chunk{}, err)
				return
			}
		}

		if buf.Len() > 0 {
			yield(m.Chunk{Text: buf.String(), Line: start, Partial: true}, nil)
		}
	}
}

// worthParsing reports whether a chunk may hold contact rows: it needs an
// "@" and an INSERT keyword.
func worthParsing(text string) bool {
	return strings.Contains(text, "@") && insertMarker.MatchString(text)
}

// ParseChunk parses every statement of a chunk and returns one table per
// INSERT … VALUES statement, in statement order. Columns are the declared
// ones or unnamed_<i> sized to the first row.
func ParseChunk(text string) ([]m.Table, error) {
	tokenizer := sqlparser.NewStringTokenizer(text)

	var tables []m.Table

	for {
		stmt, err := sqlparser.ParseNext(tokenizer)
		if errors.Is(err, io.EOF) {
			return tables, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSQLChunkParse, err)
		}

		insert, ok := stmt.(*sqlparser.Insert)
		if !ok {
			continue
		}

		values, ok := insert.Rows.(sqlparser.Values)
		if !ok {
			slog.Debug("Skipping INSERT without VALUES", "table", insert.Table.Name.String())
			continue
		}

		tables = append(tables, tableOf(insert, values))
	}
}

func tableOf(insert *sqlparser.Insert, values sqlparser.Values) m.Table {
	name := insert.Table.Name.String()
	if !insert.Table.Qualifier.IsEmpty() {
		name = insert.Table.Qualifier.String() + "." + name
	}

	table := m.Table{Name: name}

	for _, col := range insert.Columns {
		table.Columns = append(table.Columns, col.String())
	}

	for _, tuple := range values {
		row := make([]string, len(tuple))
		for i, expr := range tuple {
			row[i] = renderValue(expr)
		}

		table.Rows = append(table.Rows, row)
	}

	if len(table.Columns) == 0 && len(table.Rows) > 0 {
		table.Columns = unnamedColumns(len(table.Rows[0]))
	}

	table.RowCount = len(table.Rows)

	return table
}

func unnamedColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = "unnamed_" + strconv.Itoa(i)
	}

	return cols
}

func renderValue(expr sqlparser.Expr) string {
	switch v := expr.(type) {
	case *sqlparser.NullVal:
		return ""
	case *sqlparser.SQLVal:
		switch v.Type {
		case sqlparser.StrVal, sqlparser.IntVal, sqlparser.FloatVal:
			return string(v.Val)
		default:
			return sqlparser.String(v)
		}
	default:
		return sqlparser.String(expr)
	}
}

// SQLExtractor turns the INSERT rows of a dump into per-table comma separated
// files under <workdir>/s2c/<file index>/.
type SQLExtractor struct {
	fs  adapter.SourceFSAdapter
	cfg m.Config
}

// NewSQLExtractor creates a SQLExtractor.
func NewSQLExtractor(fsAdapter adapter.SourceFSAdapter, cfg m.Config) *SQLExtractor {
	return &SQLExtractor{fs: fsAdapter, cfg: cfg.Normalized()}
}

// TablesDir is the output directory for the dump at index.
func (x *SQLExtractor) TablesDir(root m.Path, index int) m.Path {
	return m.Path(filepath.Join(string(root), x.cfg.WorkDir, TablesDir, strconv.Itoa(index)))
}

// Extract streams the dump at path chunk by chunk, appending rows to one file
// per table after each chunk. It returns a summary per table (no rows).
// A parse failure or a row whose arity differs from its table's columns
// aborts extraction; files written so far are then not reliable.
func (x *SQLExtractor) Extract(ctx context.Context, root m.Path, index int, path m.Path) ([]m.Table, error) {
	f, err := x.fs.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	defer func() { _ = f.Close() }()

	outDir := x.TablesDir(root, index)
	known := map[string]*m.Table{}

	var order []string

	for chunk, err := range Chunks(f) {
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !worthParsing(chunk.Text) {
			continue
		}

		parsed, err := ParseChunk(chunk.Text)
		if err != nil {
			slog.Error("Failed to parse sql chunk", "path", path, "line", chunk.Line, "error", err)
			return nil, fmt.Errorf("%s line %d: %w", path, chunk.Line, err)
		}

		batch, err := mergeChunk(known, &order, parsed, outDir)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, chunk.Line, err)
		}

		for _, table := range batch {
			if err := x.flush(ctx, table); err != nil {
				return nil, fmt.Errorf("write table %s: %w", table.Name, err)
			}
		}
	}

	summary := make([]m.Table, 0, len(order))
	for _, name := range order {
		summary = append(summary, *known[name])
	}

	slog.Info("Extracted sql dump", "path", path, "tables", len(summary), "output", outDir)

	return summary, nil
}

// mergeChunk groups the parsed statements of one chunk by table, fixing each
// table's columns on first sight. Rows of a later statement declaring the same
// column names in another order are reordered to the table's columns.
func mergeChunk(known map[string]*m.Table, order *[]string, parsed []m.Table, outDir m.Path) ([]*m.Table, error) {
	pending := map[string]*m.Table{}

	var batch []*m.Table

	for _, stmt := range parsed {
		summary, ok := known[stmt.Name]
		if !ok {
			summary = &m.Table{
				Name:    stmt.Name,
				Columns: stmt.Columns,
				Output:  m.Path(filepath.Join(string(outDir), tableNameReplacer.Replace(stmt.Name))),
			}
			known[stmt.Name] = summary
			*order = append(*order, stmt.Name)
		}

		for _, row := range stmt.Rows {
			if len(row) != len(summary.Columns) {
				return nil, fmt.Errorf("%w: table %s has %d columns, row has %d",
					ErrSQLRowArity, stmt.Name, len(summary.Columns), len(row))
			}
		}

		rows, err := alignRows(summary.Columns, stmt)
		if err != nil {
			return nil, err
		}

		out, ok := pending[stmt.Name]
		if !ok {
			out = &m.Table{Name: stmt.Name, Columns: summary.Columns, Output: summary.Output}
			pending[stmt.Name] = out
			batch = append(batch, out)
		}

		out.Rows = append(out.Rows, rows...)
		out.RowCount += len(rows)
		summary.RowCount += len(rows)
	}

	return batch, nil
}

// alignRows returns stmt's rows in the order of columns. Statements without a
// column list on either side are matched by arity only.
func alignRows(columns []string, stmt m.Table) ([][]string, error) {
	if isUnnamed(columns) || isUnnamed(stmt.Columns) || slices.Equal(columns, stmt.Columns) {
		return stmt.Rows, nil
	}

	declared := make(map[string]int, len(stmt.Columns))
	for i, name := range stmt.Columns {
		declared[name] = i
	}

	positions := make([]int, len(columns))
	for i, name := range columns {
		pos, ok := declared[name]
		if !ok || len(declared) != len(columns) {
			return nil, fmt.Errorf("%w: table %s has columns (%s), statement declares (%s)",
				ErrSQLColumnMismatch, stmt.Name, strings.Join(columns, ", "), strings.Join(stmt.Columns, ", "))
		}

		positions[i] = pos
	}

	rows := make([][]string, len(stmt.Rows))
	for r, row := range stmt.Rows {
		aligned := make([]string, len(positions))
		for i, pos := range positions {
			aligned[i] = row[pos]
		}

		rows[r] = aligned
	}

	return rows, nil
}

func isUnnamed(columns []string) bool {
	return slices.Equal(columns, unnamedColumns(len(columns)))
}

func (x *SQLExtractor) flush(ctx context.Context, table *m.Table) error {
	f, created, err := x.fs.OpenAppend(ctx, table.Output)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)

	if created {
		err = w.Write(table.Columns)
	}

	if err == nil {
		err = w.WriteAll(table.Rows)
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	return err
}
