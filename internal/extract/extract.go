// Package extract drives a statement through classification, date
// sequencing and reconciliation, and returns all of its transactions or
// none of them.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtparse/internal/anchor"
	"github.com/cleared-dev/stmtparse/internal/dates"
	"github.com/cleared-dev/stmtparse/internal/model"
	"github.com/cleared-dev/stmtparse/internal/money"
	"github.com/cleared-dev/stmtparse/internal/reconcile"
	"github.com/cleared-dev/stmtparse/internal/rows"
)

// State is the orchestrator's position in an extraction.
type State int

const (
	AwaitingHeader State = iota
	Scanning
	Validating
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingHeader:
		return "awaiting-header"
	case Scanning:
		return "scanning"
	case Validating:
		return "validating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Start is a statement start month and year resolved outside the core.
type Start struct {
	Month time.Month
	Year  int
}

// Result is a fully reconciled statement.
type Result struct {
	Transactions []model.Transaction
	Warnings     []reconcile.Warning
	Opening      decimal.Decimal
	Closing      decimal.Decimal
	Pages        int
}

// Extractor holds the settings for extracting statements. It carries no
// per-document state and may be reused.
type Extractor struct {
	Validation reconcile.Options
	// Start skips the page-one header lookup when set.
	Start  *Start
	Logger zerolog.Logger
}

// New returns an Extractor with default validation and a silent logger.
func New() *Extractor {
	return &Extractor{Validation: reconcile.DefaultOptions(), Logger: zerolog.Nop()}
}

// ExtractFile opens path and extracts it. The document is closed on every
// return path.
func (e *Extractor) ExtractFile(path string, open Opener) (res *Result, err error) {
	doc, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return e.Extract(doc)
}

// Extract reads every page of doc in order and reconciles the result. The
// caller keeps ownership of doc.
func (e *Extractor) Extract(doc Document) (*Result, error) {
	r := &run{
		log:     e.Logger,
		anchors: anchor.NewSet(),
		state:   AwaitingHeader,
	}
	if e.Start != nil {
		r.seq = dates.NewSequencer(e.Start.Month, e.Start.Year)
		r.setState(Scanning)
	}

	res, err := r.execute(doc, reconcile.NewValidator(e.Validation))
	if err != nil {
		r.setState(Failed)
		return nil, err
	}
	r.setState(Done)
	return res, nil
}

// run is the state of one extraction.
type run struct {
	log     zerolog.Logger
	state   State
	seq     *dates.Sequencer
	anchors anchor.Set
	txns    []model.Transaction
}

func (r *run) setState(s State) {
	r.log.Debug().Stringer("from", r.state).Stringer("to", s).Msg("extraction state")
	r.state = s
}

func (r *run) execute(doc Document, v *reconcile.Validator) (*Result, error) {
	n := doc.NumPages()
	r.log.Debug().Int("pages", n).Msg("extracting statement")

	for page := 1; page <= n; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}
		if r.state == AwaitingHeader {
			month, year, err := dates.ParseHeader(text)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page, err)
			}
			r.log.Debug().Stringer("month", month).Int("year", year).Msg("statement start")
			r.seq = dates.NewSequencer(month, year)
			r.setState(Scanning)
		}
		if err := r.scanPage(page, text); err != nil {
			return nil, err
		}
	}
	if r.state == AwaitingHeader {
		return nil, fmt.Errorf("empty document: %w", ErrHeaderNotFound)
	}

	r.setState(Validating)
	report, err := v.Validate(r.anchors, r.txns)
	if err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	for _, w := range report.Warnings {
		r.log.Warn().
			Str("check", w.Check).
			Int("row", w.Index+1).
			Str("discrepancy", w.Discrepancy.StringFixed(2)).
			Msg(w.Message)
	}

	return &Result{
		Transactions: r.txns,
		Warnings:     report.Warnings,
		Opening:      report.Opening,
		Closing:      report.Closing,
		Pages:        n,
	}, nil
}

func (r *run) scanPage(page int, text string) error {
	if err := r.anchors.ScanPage(text); err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}

	before := len(r.txns)
	for i, line := range strings.Split(text, "\n") {
		m, ok := rows.Classify(line)
		if !ok {
			continue
		}
		txn, err := r.build(m)
		if err != nil {
			return fmt.Errorf("page %d line %d: %w", page, i+1, err)
		}
		r.txns = append(r.txns, txn)
	}
	r.log.Debug().Int("page", page).Int("transactions", len(r.txns)-before).Msg("page scanned")
	return nil
}

func (r *run) build(m rows.Match) (model.Transaction, error) {
	date, err := r.seq.Resolve(m.Day, m.Month)
	if err != nil {
		return model.Transaction{}, err
	}
	amount, err := money.Normalize(m.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	balance, err := money.Normalize(m.Balance)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("balance: %w", err)
	}
	fee, err := money.Normalize(m.Fee)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("fee: %w", err)
	}

	desc := m.Description
	if !m.HasDescription() {
		desc = model.DescriptionPlaceholder
	}
	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Balance:     balance,
		BankFee:     fee,
	}, nil
}
