package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrSummaryNotFound = errors.New("summary not found")
)

type Document struct {
	ID          uuid.UUID
	Filename    string
	ContentType string
	Status      DocumentStatus
	CreatedAt   time.Time
}

// Chunk is one orchestrated chunk and what happened to it.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	Index      int
	Text       string
	WordCount  int
	Summary    string
	Outcome    string
}

type Summary struct {
	DocumentID     uuid.UUID
	Summary        string
	OriginalWords  int
	SummaryWords   int
	ShortCircuited bool
	// FallbackChunks lists chunk indexes replaced by truncated text.
	FallbackChunks []int
}

// Store defines persistence contract; an external DB implementation can replace this.
type Store interface {
	CreateDocument(ctx context.Context, filename, contentType string) (Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	// SaveChunks replaces the document's chunks.
	SaveChunks(ctx context.Context, docID uuid.UUID, chunks []Chunk) ([]Chunk, error)
	ListChunks(ctx context.Context, docID uuid.UUID) ([]Chunk, error)
	SaveSummary(ctx context.Context, docID uuid.UUID, summary Summary) error
	GetSummary(ctx context.Context, docID uuid.UUID) (Summary, error)
}
