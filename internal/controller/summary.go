package controller

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

// decisionTally counts journal entries per decision.
type decisionTally struct {
	accepted int
	rejected int
	skipped  int
	pending  int
}

func (d decisionTally) total() int {
	return d.accepted + d.rejected + d.skipped + d.pending
}

func (d *decisionTally) add(decision m.Decision) {
	switch decision {
	case m.Accepted:
		d.accepted++
	case m.Rejected:
		d.rejected++
	case m.Skipped:
		d.skipped++
	case m.Pending:
		d.pending++
	}
}

// tallyJournal reduces the journal into decision counts.
func tallyJournal(journal pkg.FileSpill[m.Candidate]) (decisionTally, error) {
	var tally decisionTally

	if journal == nil {
		return tally, nil
	}

	err := journal.Range(func(_ uint64, c m.Candidate) error {
		tally.add(c.Decision)
		return nil
	})
	if err != nil {
		return tally, fmt.Errorf("read decision journal: %w", err)
	}

	return tally, nil
}

func renderBucketTable(buckets []m.Bucket) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Bucket", "Delimiter", "Links"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})

	links := 0

	for _, bucket := range buckets {
		table.Append([]string{
			filepath.Base(string(bucket.Dir)),
			strconv.QuoteRune(bucket.Delimiter.Char),
			strconv.Itoa(len(bucket.Links)),
		})

		links += len(bucket.Links)
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Buckets %d", len(buckets)),
		"",
		strconv.Itoa(links),
	})

	table.Render()

	return tableBuffer.String()
}

func renderDecisionTable(tally decisionTally) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Decision", "Files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	table.Append([]string{m.Accepted.String(), strconv.Itoa(tally.accepted)})
	table.Append([]string{m.Rejected.String(), strconv.Itoa(tally.rejected)})
	table.Append([]string{m.Skipped.String(), strconv.Itoa(tally.skipped)})

	if tally.pending > 0 {
		table.Append([]string{m.Pending.String(), strconv.Itoa(tally.pending)})
	}

	table.SetFooter([]string{"Total", strconv.Itoa(tally.total())})
	table.Render()

	return tableBuffer.String()
}

func batchHeadline(batch m.Batch) string {
	headline := fmt.Sprintf("Batch %s -> %s", batch.Root, batch.Outcome)
	if batch.Location != "" && batch.Location != batch.Root {
		headline += fmt.Sprintf(" (%s)", batch.Location)
	}

	return headline
}
