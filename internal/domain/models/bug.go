package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BugStatus string

const (
	StatusOpen       BugStatus = "open"
	StatusInProgress BugStatus = "in-progress"
	StatusResolved   BugStatus = "resolved"
	StatusNeedReview BugStatus = "need-review"
)

type BugCategory string

const (
	CategoryFrontend BugCategory = "frontend"
	CategoryBackend  BugCategory = "backend"
)

var (
	ErrInvalidStatus     = errors.New("unknown bug status")
	ErrInvalidCategory   = errors.New("unknown bug category")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// allowedTransitions is the explicit status state machine. The dashboard only
// ever drives open <-> need-review <-> resolved and reopen-from-resolved;
// in-progress stays reachable through the API but has no dashboard action.
var allowedTransitions = map[BugStatus][]BugStatus{
	StatusOpen:       {StatusNeedReview, StatusResolved, StatusInProgress},
	StatusInProgress: {StatusOpen, StatusNeedReview, StatusResolved},
	StatusNeedReview: {StatusOpen, StatusResolved},
	StatusResolved:   {StatusOpen},
}

func (s BugStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusNeedReview:
		return true
	}
	return false
}

func (c BugCategory) Valid() bool {
	return c == CategoryFrontend || c == CategoryBackend
}

// CanTransition reports whether moving from s to next is allowed. Setting the
// same status again is treated as a no-op and always allowed.
func (s BugStatus) CanTransition(next BugStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates next and checks it against the transition table.
func (s BugStatus) Transition(next BugStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}

// Bug is one report in the collection. Images hold either data-URL encoded
// screenshots or stored-image references minted by the upload endpoint; both
// are passed through opaquely.
type Bug struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Author      string      `db:"author" json:"author"`
	URL         string      `db:"url" json:"url"`
	Description string      `db:"description" json:"description"`
	Images      []string    `db:"images" json:"images"`
	Category    BugCategory `db:"category" json:"category"`
	Status      BugStatus   `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
	ResolvedAt  *time.Time  `db:"resolved_at" json:"resolvedAt,omitempty"`
	DevNote     string      `db:"dev_note" json:"dev_note,omitempty"`
}

// BugSummary is the list projection: everything except the image payloads,
// with a count substituted so dashboards with many attachments stay cheap.
type BugSummary struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Author      string      `db:"author" json:"author"`
	URL         string      `db:"url" json:"url"`
	Description string      `db:"description" json:"description"`
	Category    BugCategory `db:"category" json:"category"`
	Status      BugStatus   `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
	ResolvedAt  *time.Time  `db:"resolved_at" json:"resolvedAt,omitempty"`
	ImageCount  int         `db:"image_count" json:"image_count"`
	DevNote     string      `db:"dev_note" json:"dev_note,omitempty"`
}
