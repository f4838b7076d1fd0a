// Package api serves statement extraction over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtparse/internal/export"
	"github.com/cleared-dev/stmtparse/internal/extract"
	"github.com/cleared-dev/stmtparse/internal/logger"
	"github.com/cleared-dev/stmtparse/internal/model"
	"github.com/cleared-dev/stmtparse/internal/pdftext"
	"github.com/cleared-dev/stmtparse/internal/reconcile"
)

const dateFormat = "2006-01-02"

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	Pages []string `json:"pages"`
	// StartMonth and StartYear skip the page-one header lookup when both
	// are set.
	StartMonth int  `json:"startMonth,omitempty"`
	StartYear  int  `json:"startYear,omitempty"`
	Lenient    bool `json:"lenient,omitempty"`
}

// Transaction is the JSON form of a model.Transaction.
type Transaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance"`
	BankFee     string `json:"bankFee"`
	NeedsReview bool   `json:"needsReview,omitempty"`
}

// Warning is the JSON form of a reconcile.Warning.
type Warning struct {
	Check       string `json:"check"`
	Row         int    `json:"row,omitempty"`
	Discrepancy string `json:"discrepancy"`
	Message     string `json:"message"`
}

// ExtractResponse is returned by both extraction endpoints.
type ExtractResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Kind         string        `json:"kind,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	Opening      string        `json:"opening,omitempty"`
	Closing      string        `json:"closing,omitempty"`
	Count        int           `json:"count"`
	CSV          string        `json:"csv,omitempty"`
}

// Server holds the settings shared by every request. Each request gets its
// own extractor.
type Server struct {
	Validation reconcile.Options
	Separator  rune
	Version    string
	Logger     zerolog.Logger
}

// New returns a Server with default validation.
func New(log zerolog.Logger) *Server {
	return &Server{
		Validation: reconcile.DefaultOptions(),
		Separator:  export.DefaultSeparator,
		Version:    "dev",
		Logger:     log,
	}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stmtparse",
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})
	app.Use(s.requestLogger)
	app.Get("/api/health", s.handleHealth)
	app.Post("/api/extract", s.handleExtract)
	app.Post("/api/convert", s.handleConvert)
	return app
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	app := s.App()
	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	s.Logger.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	log := s.Logger.With().Str("method", c.Method()).Str("path", c.Path()).Logger()
	c.SetUserContext(logger.WithContext(c.UserContext(), log))

	err := c.Next()
	log.Debug().Int("status", c.Response().StatusCode()).Dur("took", time.Since(start)).Msg("request")
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.Version,
	})
}

func (s *Server) handleExtract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Errorf("parsing request: %w", err))
	}
	if len(req.Pages) == 0 {
		return writeError(c, fiber.StatusBadRequest, errors.New("no pages given"))
	}

	ext := s.extractor(c)
	if req.Lenient {
		ext.Validation.Lenient = true
	}
	if req.StartMonth != 0 || req.StartYear != 0 {
		if req.StartMonth < 1 || req.StartMonth > 12 || req.StartYear < 1 {
			return writeError(c, fiber.StatusBadRequest, fmt.Errorf("invalid start %d/%d", req.StartMonth, req.StartYear))
		}
		ext.Start = &extract.Start{Month: time.Month(req.StartMonth), Year: req.StartYear}
	}

	res, err := ext.Extract(extract.Pages(req.Pages))
	return s.respond(c, res, err)
}

func (s *Server) handleConvert(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, errors.New("no file uploaded, use form field 'file'"))
	}
	if !pdftext.Supported(fh.Filename) {
		return writeError(c, fiber.StatusBadRequest, fmt.Errorf("%w: %s", pdftext.ErrUnsupportedFormat, fh.Filename))
	}

	dir, err := os.MkdirTemp("", "stmtparse-*")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Errorf("creating temp dir: %w", err))
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "statement"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, path); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Errorf("saving upload: %w", err))
	}

	ext := s.extractor(c)
	if c.FormValue("lenient") == "true" {
		ext.Validation.Lenient = true
	}
	res, err := ext.ExtractFile(path, pdftext.Open)
	return s.respond(c, res, err)
}

func (s *Server) extractor(c *fiber.Ctx) *extract.Extractor {
	ext := extract.New()
	ext.Validation = s.Validation
	ext.Logger = logger.FromContext(c.UserContext())
	return ext
}

func (s *Server) respond(c *fiber.Ctx, res *extract.Result, err error) error {
	if err != nil {
		log := logger.FromContext(c.UserContext())
		log.Info().Err(err).Str("kind", extract.Kind(err)).Msg("extraction failed")
		return writeError(c, fiber.StatusUnprocessableEntity, err)
	}

	var csv bytes.Buffer
	if err := export.NewWriter(s.Separator).Write(&csv, res.Transactions); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Errorf("exporting: %w", err))
	}

	resp := ExtractResponse{
		Success:      true,
		Transactions: make([]Transaction, 0, len(res.Transactions)),
		Opening:      res.Opening.StringFixed(2),
		Closing:      res.Closing.StringFixed(2),
		Count:        len(res.Transactions),
		CSV:          csv.String(),
	}
	for _, txn := range res.Transactions {
		resp.Transactions = append(resp.Transactions, toTransaction(txn))
	}
	for _, w := range res.Warnings {
		jw := Warning{Check: w.Check, Discrepancy: w.Discrepancy.StringFixed(2), Message: w.Message}
		if w.Index >= 0 {
			jw.Row = w.Index + 1
		}
		resp.Warnings = append(resp.Warnings, jw)
	}
	return c.JSON(resp)
}

func toTransaction(txn model.Transaction) Transaction {
	return Transaction{
		Date:        txn.Date.Format(dateFormat),
		Description: txn.Description,
		Amount:      txn.Amount.StringFixed(2),
		Balance:     txn.Balance.StringFixed(2),
		BankFee:     txn.BankFee.StringFixed(2),
		NeedsReview: txn.NeedsReview(),
	}
}

func writeError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(ExtractResponse{
		Success:      false,
		Error:        err.Error(),
		Kind:         extract.Kind(err),
		Transactions: []Transaction{},
	})
}
