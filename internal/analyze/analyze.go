// Package analyze inspects a statement without reconciling it, to show how
// well its layout suits extraction.
package analyze

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/stmtparse/internal/anchor"
	"github.com/cleared-dev/stmtparse/internal/dates"
	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/money"
	"github.com/cleared-dev/stmtparse/internal/rows"
)

// MaxSamples caps Report.Samples.
const MaxSamples = 5

// Report summarises a statement's layout.
type Report struct {
	Pages       int
	HeaderFound bool
	StartMonth  time.Month
	StartYear   int
	Rows        int
	RowsWithFee int
	// Unclassified holds date-led lines that did not classify as rows.
	Unclassified []string
	// Anchors counts label matches per anchor name.
	Anchors map[string]int
	Samples []rows.Match
	Issues  []string
}

// Analyze reads every page of doc. Only a page read failure is an error;
// everything else ends up in the report.
func Analyze(doc extract.Document) (*Report, error) {
	rep := &Report{
		Pages:   doc.NumPages(),
		Anchors: map[string]int{anchor.Opening: 0, anchor.Closing: 0},
	}
	feeFormats := map[string]bool{}

	for page := 1; page <= rep.Pages; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}
		if page == 1 {
			if month, year, err := dates.ParseHeader(text); err == nil {
				rep.HeaderFound = true
				rep.StartMonth, rep.StartYear = month, year
			}
		}
		for name, raws := range anchor.Scan(text, anchor.NewOpening(), anchor.NewClosing()) {
			rep.Anchors[name] += len(raws)
		}

		for _, line := range strings.Split(text, "\n") {
			m, ok := rows.Classify(line)
			if !ok {
				if rows.LooksLikeRow(line) {
					rep.Unclassified = append(rep.Unclassified, strings.TrimSpace(line))
				}
				continue
			}
			rep.Rows++
			if m.HasFee() {
				rep.RowsWithFee++
				feeFormats[feeFormat(m.Fee)] = true
			}
			if len(rep.Samples) < MaxSamples {
				rep.Samples = append(rep.Samples, m)
			}
		}
	}

	rep.Issues = rep.issues(feeFormats)
	return rep, nil
}

func feeFormat(fee string) string {
	if strings.HasSuffix(fee, money.CreditMarker) {
		return "marked credit"
	}
	return "unmarked"
}

func (r *Report) issues(feeFormats map[string]bool) []string {
	var out []string
	if !r.HeaderFound {
		out = append(out, "statement period header not found on page 1")
	}
	for _, name := range []string{anchor.Opening, anchor.Closing} {
		if r.Anchors[name] == 0 {
			out = append(out, fmt.Sprintf("no %s balance found", name))
		}
	}
	if r.Rows == 0 {
		out = append(out, "no transaction rows found")
	}
	if len(feeFormats) > 1 {
		formats := make([]string, 0, len(feeFormats))
		for f := range feeFormats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		out = append(out, fmt.Sprintf("multiple fee formats detected: %s", strings.Join(formats, ", ")))
	}
	if n := len(r.Unclassified); n > 0 {
		out = append(out, fmt.Sprintf("%d date-led lines did not classify as rows", n))
	}
	return out
}

// Print writes a human-readable report to w.
func (r *Report) Print(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Pages: %d\n", r.Pages)
	if r.HeaderFound {
		fmt.Fprintf(&b, "Statement start: %s %d\n", r.StartMonth, r.StartYear)
	} else {
		b.WriteString("Statement start: not found\n")
	}
	fmt.Fprintf(&b, "Transaction rows: %d (%d with bank fee)\n", r.Rows, r.RowsWithFee)
	fmt.Fprintf(&b, "Opening balance labels: %d\n", r.Anchors[anchor.Opening])
	fmt.Fprintf(&b, "Closing balance labels: %d\n", r.Anchors[anchor.Closing])

	if len(r.Issues) > 0 {
		b.WriteString("\nPotential issues:\n")
		for _, issue := range r.Issues {
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}
	if len(r.Unclassified) > 0 {
		b.WriteString("\nUnclassified lines:\n")
		for _, line := range r.Unclassified {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\nSample transactions:\n")
		for i, m := range r.Samples {
			fee := m.Fee
			if !m.HasFee() {
				fee = "none"
			}
			fmt.Fprintf(&b, "\nTransaction %d:\n", i+1)
			fmt.Fprintf(&b, "  Date: %s %s\n", m.Day, m.Month)
			fmt.Fprintf(&b, "  Description: %s\n", m.Description)
			fmt.Fprintf(&b, "  Amount: %s\n", m.Amount)
			fmt.Fprintf(&b, "  Balance: %s\n", m.Balance)
			fmt.Fprintf(&b, "  Fee: %s\n", fee)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
