package receipt

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-scanner/internal/parsing"
	"github.com/zombor/receipt-scanner/internal/scanning"
)

// ErrNoFile is returned when a scan's image was not retained
var ErrNoFile = errors.New("scan has no stored file")

// IDGenerator generates unique IDs for scans
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
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db           DB
	scanner      scanning.Scanner
	storage      Storage
	idGenerator  IDGenerator
	timeSource   TimeSource
	retainImages bool
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage, retainImages bool) *Service {
	return NewServiceWithDeps(db, scanner, storage, retainImages, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, retainImages bool, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:           db,
		scanner:      scanner,
		storage:      storage,
		idGenerator:  idGen,
		timeSource:   timeSrc,
		retainImages: retainImages,
	}
}

var (
	filenameCharsPattern = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters from phone-generated names and truncates them
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = filenameCharsPattern.ReplaceAllString(base, "")
	base = whitespacePattern.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}
	return base + ext
}

// ProcessReceipt runs OCR over an uploaded image, parses the text and records the scan.
// OCR failures are returned as errors; a sparse parse is not an error.
func (s *Service) ProcessReceipt(filename string, data []byte, contentType string) (*Scan, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	var savedPath string
	if s.retainImages {
		var err error
		savedPath, err = s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
		if err != nil {
			return nil, fmt.Errorf("saving file: %w", err)
		}
	}

	rawText, err := s.scanner.RecognizeText(data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.discardFile(savedPath)
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	scan := &Scan{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		RawText:     rawText,
		Parsed:      parsing.Parse(rawText),
		CreatedAt:   now,
	}
	if scan.Parsed.Total != nil {
		scan.TotalCents, _ = parsing.Cents(*scan.Parsed.Total)
	}

	if err := s.db.SaveScan(scan); err != nil {
		s.discardFile(savedPath)
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	slog.Info("Processed receipt",
		"id", id,
		"merchant", scan.Parsed.Merchant,
		"items", len(scan.Parsed.Items),
	)
	return scan, nil
}

func (s *Service) discardFile(path string) {
	if path == "" {
		return
	}
	if err := s.storage.Delete(path); err != nil {
		slog.Warn("Failed to delete file", "filename", path, "error", err)
	}
}

// ParseText parses already recognized text without OCR or persistence
func (s *Service) ParseText(rawText string) parsing.ParsedReceipt {
	return parsing.Parse(rawText)
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan and its image
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	s.discardFile(scan.Filename)

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}
	return nil
}

// GetScanFile retrieves the stored image for a scan
func (s *Service) GetScanFile(id string) ([]byte, string, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan: %w", err)
	}
	if scan.Filename == "" {
		return nil, "", ErrNoFile
	}

	data, err := s.storage.Get(scan.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting scan file: %w", err)
	}
	return data, scan.ContentType, nil
}
