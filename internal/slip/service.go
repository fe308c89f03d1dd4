package slip

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/boleto-reader/internal/boleto"
	"github.com/zombor/boleto-reader/internal/scanning"
)

// IDGenerator generates unique IDs for slips
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.New().String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service scans uploaded documents and keeps a history of the results
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// sanitizeFilename drops special characters from the base name and truncates it.
// Bank apps produce names like "Boleto (3) - Nº 0001234 – Vencimento 10.05.pdf".
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeChars.ReplaceAllString(base, "")
	base = strings.TrimSpace(spaceRuns.ReplaceAllString(base, " "))
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "boleto"
	}
	ext = unsafeChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// ProcessDocument stores an uploaded PDF or photo, scans it for a digit line
// and records the outcome. A document without a line is still recorded.
func (s *Service) ProcessDocument(ctx context.Context, filename string, data []byte, contentType, password string) (*Slip, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedName, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.scanner.ScanDocument(ctx, data, contentType, password)
	if err != nil {
		slog.Error("Failed to scan document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedName)
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	// A cancelled upload fails every page; that is not a "no line" outcome
	if err := ctx.Err(); err != nil {
		s.removeFile(savedName)
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	slip := &Slip{
		ID:           id,
		OriginalName: filename,
		Filename:     savedName,
		ContentType:  contentType,
		CreatedAt:    now,
	}
	slip.applyResult(result)

	if err := s.db.SaveSlip(slip); err != nil {
		s.removeFile(savedName)
		return nil, fmt.Errorf("saving slip to database: %w", err)
	}

	if slip.Found {
		slog.Info("Slip scanned", "id", id, "kind", slip.Kind, "page", slip.PageIndex)
	} else {
		slog.Info("No digit line found", "id", id, "pages", slip.Pages)
	}
	return slip, nil
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to clean up file", "filename", name, "error", err)
	}
}

// GetSlip retrieves a slip by ID
func (s *Service) GetSlip(id string) (*Slip, error) {
	slip, err := s.db.GetSlip(id)
	if err != nil {
		return nil, fmt.Errorf("getting slip: %w", err)
	}
	return slip, nil
}

// ListSlips returns all slips, newest first
func (s *Service) ListSlips() ([]*Slip, error) {
	slips, err := s.db.ListSlips()
	if err != nil {
		return nil, fmt.Errorf("listing slips: %w", err)
	}
	sort.SliceStable(slips, func(i, j int) bool {
		return slips[i].CreatedAt.After(slips[j].CreatedAt)
	})
	return slips, nil
}

// DeleteSlip removes a slip and its file
func (s *Service) DeleteSlip(id string) error {
	slip, err := s.db.GetSlip(id)
	if err != nil {
		return fmt.Errorf("getting slip for deletion: %w", err)
	}

	if err := s.storage.Delete(slip.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", slip.Filename, "error", err)
	}

	if err := s.db.DeleteSlip(id); err != nil {
		return fmt.Errorf("deleting slip from database: %w", err)
	}
	return nil
}

// GetSlipFile retrieves the uploaded document for a slip
func (s *Service) GetSlipFile(id string) ([]byte, string, error) {
	slip, err := s.db.GetSlip(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting slip: %w", err)
	}

	data, err := s.storage.Get(slip.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting slip file: %w", err)
	}

	return data, slip.ContentType, nil
}

// CheckLine validates and formats a digit line typed or pasted by hand
func (s *Service) CheckLine(input string) LineCheck {
	line, err := boleto.Parse(input)
	if err != nil {
		return LineCheck{
			Valid:   false,
			Digits:  boleto.Digits(input),
			Display: boleto.FormatLine(input),
			Error:   err.Error(),
		}
	}
	return LineCheck{
		Valid:   true,
		Digits:  line.Digits,
		Kind:    line.Kind,
		Display: line.String(),
		Barcode: boleto.Barcode(line),
	}
}
