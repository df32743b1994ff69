package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentStatus is the pipeline checkpoint a document has reached.
type DocumentStatus string

const (
	StatusIngested      DocumentStatus = "INGESTED"
	StatusClassified    DocumentStatus = "CLASSIFIED"
	StatusTextExtracted DocumentStatus = "TEXT_EXTRACTED"
	StatusParsed        DocumentStatus = "PARSED"
	StatusNormalized    DocumentStatus = "NORMALIZED"
	StatusValidated     DocumentStatus = "VALIDATED"
	StatusDone          DocumentStatus = "DONE"
	StatusFailed        DocumentStatus = "FAILED"
)

// statusSequence is the only forward path; FAILED sits outside it.
var statusSequence = []DocumentStatus{
	StatusIngested,
	StatusClassified,
	StatusTextExtracted,
	StatusParsed,
	StatusNormalized,
	StatusValidated,
	StatusDone,
}

func (s DocumentStatus) position() int {
	for i, st := range statusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is a known status.
func (s DocumentStatus) IsValid() bool {
	return s == StatusFailed || s.position() >= 0
}

// IsTerminal reports whether no transition can leave s.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Next returns the status that follows s on the forward path.
func (s DocumentStatus) Next() (DocumentStatus, bool) {
	if s.IsTerminal() {
		return "", false
	}
	pos := s.position()
	if pos < 0 || pos+1 >= len(statusSequence) {
		return "", false
	}
	return statusSequence[pos+1], true
}

// ParseDocumentStatus parses a status name.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	status := DocumentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// NonTerminalStatuses lists the statuses a run can be parked at.
func NonTerminalStatuses() []DocumentStatus {
	return []DocumentStatus{
		StatusIngested,
		StatusClassified,
		StatusTextExtracted,
		StatusParsed,
		StatusNormalized,
		StatusValidated,
	}
}

// CanTransition reports whether a document may move from one status to another.
// Forward moves advance exactly one step; FAILED is reachable from any non-terminal status.
func CanTransition(from, to DocumentStatus) bool {
	if from.IsTerminal() || !from.IsValid() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	next, ok := from.Next()
	return ok && next == to
}

// ResultsVisible reports whether persisted transactions may be read for a document in status s:
// DONE, VALIDATED, PARSED and NORMALIZED are visible, every other status is not.
func ResultsVisible(s DocumentStatus) bool {
	switch s {
	case StatusDone, StatusValidated, StatusParsed, StatusNormalized:
		return true
	default:
		return false
	}
}

// PageStats describes one page's extractable characters and embedded images.
type PageStats struct {
	Chars  int
	Images int
}

// Document is one uploaded statement and its pipeline state.
type Document struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
	IsScanned   *bool
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	Error       *string
	ID          string
	Filename    string
	ContentType string
	Locator     string
	ContentHash string
	Brand       Brand
	BankCode    string
	Status      DocumentStatus
}

// NewDocument returns a freshly ingested document.
func NewDocument(id, locator, contentHash, filename, contentType string, now time.Time) *Document {
	return &Document{
		ID:          id,
		Locator:     locator,
		ContentHash: contentHash,
		Filename:    filename,
		ContentType: contentType,
		Brand:       BrandUnknown,
		Status:      StatusIngested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionTo advances the document one step along the forward path.
func (d *Document) TransitionTo(next DocumentStatus, now time.Time) error {
	if next == StatusFailed {
		return fmt.Errorf("%w: use Fail to record a failure", ErrInvalidTransition)
	}
	if !CanTransition(d.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, next)
	}
	d.setStatus(next, now)
	return nil
}

// Fail moves a non-terminal document to FAILED and records msg.
func (d *Document) Fail(msg string, now time.Time) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return ErrEmptyFailureMessage
	}
	if !CanTransition(d.Status, StatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, StatusFailed)
	}
	d.Error = &msg
	d.setStatus(StatusFailed, now)
	return nil
}

func (d *Document) setStatus(s DocumentStatus, now time.Time) {
	d.Status = s
	d.UpdatedAt = now
	if s.IsTerminal() {
		processed := now
		d.ProcessedAt = &processed
	}
}

// SetClassification records the classifier's findings on the document.
func (d *Document) SetClassification(brand Brand, scanned bool, start, end *time.Time) {
	d.Brand = brand
	d.BankCode = brand.RoutingCode()
	d.IsScanned = &scanned
	d.PeriodStart = start
	d.PeriodEnd = end
}
