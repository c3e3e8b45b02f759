package dto

import (
	"time"

	"github.com/google/uuid"

	"bugdash/internal/domain/models"
)

// CreateBugRequest is the submission draft for a new report. The backing
// store assigns the id; dev_note only exists on the edit path.
type CreateBugRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Author      string   `json:"author" validate:"required,max=255"`
	URL         string   `json:"url" validate:"required,url"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images"`
	Category    string   `json:"category" validate:"required,max=50"`
	Status      string   `json:"status" validate:"required,max=20"`
}

// UpdateBugRequest is the edit draft: id plus whatever fields the caller
// wants overlaid onto the stored record. Absent fields are left untouched;
// included fields win entirely (last writer wins).
type UpdateBugRequest struct {
	ID          uuid.UUID   `json:"id" validate:"required"`
	Title       *string     `json:"title,omitempty" validate:"omitempty,max=255"`
	Author      *string     `json:"author,omitempty" validate:"omitempty,max=255"`
	URL         *string     `json:"url,omitempty" validate:"omitempty,url"`
	Description *string     `json:"description,omitempty"`
	Images      *[]string   `json:"images,omitempty"`
	Category    *string     `json:"category,omitempty" validate:"omitempty,max=50"`
	Status      *string     `json:"status,omitempty" validate:"omitempty,max=20"`
	ResolvedAt  *time.Time  `json:"resolvedAt,omitempty"`
	DevNote     *string     `json:"dev_note,omitempty"`
}

type DeleteBugRequest struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

// BugListResponse mirrors the gateway list contract: the full page under
// "data", nothing else.
type BugListResponse struct {
	Data []models.Bug `json:"data"`
}

type BugSummaryListResponse struct {
	Data []models.BugSummary `json:"data"`
}

type BugImagesResponse struct {
	Images []string `json:"images"`
}

type UploadImageResponse struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ToBug converts a validated create draft into the entity the repository
// persists. Timestamps are stamped by the service.
func (r CreateBugRequest) ToBug() models.Bug {
	return models.Bug{
		Title:       r.Title,
		Author:      r.Author,
		URL:         r.URL,
		Description: r.Description,
		Images:      r.Images,
		Category:    models.BugCategory(r.Category),
		Status:      models.BugStatus(r.Status),
	}
}
