package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bugdash/internal/domain/models"
	"bugdash/internal/transport/http/dto"
)

// Notifier receives user-facing outcome messages for store operations.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// BugGateway is the slice of the API the store consumes.
type BugGateway interface {
	CreateBug(ctx context.Context, req dto.CreateBugRequest) ([]models.Bug, error)
	ListBugs(ctx context.Context, page, limit int) ([]models.Bug, error)
	ListSummaries(ctx context.Context) ([]models.BugSummary, error)
	UpdateBug(ctx context.Context, req dto.UpdateBugRequest) error
	DeleteBug(ctx context.Context, bugID uuid.UUID) error
	GetImages(ctx context.Context, bugID uuid.UUID) ([]string, error)
}

// BugStore holds the session's view of the bug list. It never patches the
// cached list in place: every successful mutation is followed by a full
// refetch of the current page, so the cache always reflects a server
// round trip. The generation counter ticks on every cache replacement,
// letting consumers detect refreshes cheaply.
type BugStore struct {
	mu      sync.Mutex
	gateway BugGateway
	notify  Notifier

	bugs       []models.Bug
	generation uint64

	page  int
	limit int

	// editing routes the shared submit path: nil means create, otherwise
	// the submitted form is an edit of this record.
	editing *models.Bug

	isLoading        bool
	isSubmitting     bool
	isDeleting       bool
	isUpdatingStatus bool
	loadingImages    map[uuid.UUID]bool
}

func NewBugStore(gateway BugGateway, notify Notifier) *BugStore {
	return &BugStore{
		gateway:       gateway,
		notify:        notify,
		page:          1,
		limit:         10,
		loadingImages: make(map[uuid.UUID]bool),
	}
}

// FetchBugs loads one page and replaces the cached list wholesale. On
// failure the previous cache is kept.
func (s *BugStore) FetchBugs(ctx context.Context, page, limit int) error {
	s.mu.Lock()
	s.isLoading = true
	s.page = page
	s.limit = limit
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	bugs, err := s.gateway.ListBugs(ctx, page, limit)
	if err != nil {
		s.notify.Error("Failed to fetch bugs: " + err.Error())
		return err
	}

	s.replace(bugs)
	return nil
}

// reload refetches the page the store is currently on. Called after every
// successful mutation instead of patching the cache.
func (s *BugStore) reload(ctx context.Context) {
	s.mu.Lock()
	page, limit := s.page, s.limit
	s.mu.Unlock()

	bugs, err := s.gateway.ListBugs(ctx, page, limit)
	if err != nil {
		s.notify.Error("Failed to refresh bugs: " + err.Error())
		return
	}

	s.replace(bugs)
}

func (s *BugStore) replace(bugs []models.Bug) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bugs = bugs
	s.generation++
}

// StartEditing marks the given record as the target of the next submit.
func (s *BugStore) StartEditing(bug models.Bug) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := bug
	s.editing = &b
}

func (s *BugStore) CancelEditing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editing = nil
}

// SubmitBug is the shared form handler: it creates a new report, or updates
// the record picked by StartEditing. Whatever the outcome, the editing
// reference is cleared at the end so the next submit starts fresh.
func (s *BugStore) SubmitBug(ctx context.Context, form dto.CreateBugRequest) error {
	s.mu.Lock()
	s.isSubmitting = true
	editing := s.editing
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSubmitting = false
		s.editing = nil
		s.mu.Unlock()
	}()

	if editing != nil {
		req := dto.UpdateBugRequest{
			ID:          editing.ID,
			Title:       &form.Title,
			Author:      &form.Author,
			URL:         &form.URL,
			Description: &form.Description,
			Images:      &form.Images,
			Category:    &form.Category,
			Status:      &form.Status,
		}

		if err := s.gateway.UpdateBug(ctx, req); err != nil {
			s.notify.Error("Failed to update bug: " + err.Error())
			return err
		}

		s.notify.Success("Bug updated successfully")
	} else {
		if _, err := s.gateway.CreateBug(ctx, form); err != nil {
			s.notify.Error("Failed to submit bug: " + err.Error())
			return err
		}

		s.notify.Success("Bug submitted successfully")
	}

	s.reload(ctx)
	return nil
}

// ChangeStatus moves one record to the given status. Resolving stamps
// resolvedAt with the current time; any other move carries the stored
// resolution timestamp along untouched, so reopening never erases it.
func (s *BugStore) ChangeStatus(ctx context.Context, bugID uuid.UUID, next models.BugStatus) error {
	s.mu.Lock()
	s.isUpdatingStatus = true
	var current *models.Bug
	for i := range s.bugs {
		if s.bugs[i].ID == bugID {
			current = &s.bugs[i]
			break
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isUpdatingStatus = false
		s.mu.Unlock()
	}()

	status := string(next)
	req := dto.UpdateBugRequest{
		ID:     bugID,
		Status: &status,
	}

	if next == models.StatusResolved {
		now := time.Now()
		req.ResolvedAt = &now
	} else if current != nil && current.ResolvedAt != nil {
		req.ResolvedAt = current.ResolvedAt
	}

	if err := s.gateway.UpdateBug(ctx, req); err != nil {
		s.notify.Error("Failed to update status: " + err.Error())
		return err
	}

	s.notify.Success("Status updated")
	s.reload(ctx)
	return nil
}

// DeleteBug removes one record and reports whether the deletion went
// through, so callers can close confirmation UI only on success.
func (s *BugStore) DeleteBug(ctx context.Context, bugID uuid.UUID) bool {
	s.mu.Lock()
	s.isDeleting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isDeleting = false
		s.mu.Unlock()
	}()

	if err := s.gateway.DeleteBug(ctx, bugID); err != nil {
		s.notify.Error("Failed to delete bug: " + err.Error())
		return false
	}

	s.notify.Success("Bug deleted")
	s.reload(ctx)
	return true
}

// FetchImages loads the image list of one record on demand. A record
// without images yields an empty list, not an error.
func (s *BugStore) FetchImages(ctx context.Context, bugID uuid.UUID) ([]string, error) {
	s.mu.Lock()
	s.loadingImages[bugID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.loadingImages, bugID)
		s.mu.Unlock()
	}()

	images, err := s.gateway.GetImages(ctx, bugID)
	if err != nil {
		s.notify.Error("Failed to fetch images: " + err.Error())
		return nil, err
	}

	return images, nil
}

// Bugs returns a copy of the cached list.
func (s *BugStore) Bugs() []models.Bug {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Bug, len(s.bugs))
	copy(out, s.bugs)
	return out
}

// Generation ticks on every cache replacement.
func (s *BugStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *BugStore) Editing() *models.Bug {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editing == nil {
		return nil
	}
	b := *s.editing
	return &b
}

func (s *BugStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *BugStore) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isSubmitting
}

func (s *BugStore) IsDeleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDeleting
}

func (s *BugStore) IsUpdatingStatus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isUpdatingStatus
}

func (s *BugStore) IsLoadingImages(bugID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingImages[bugID]
}
