package repository

import (
	"context"

	"github.com/google/uuid"

	"bugdash/internal/domain/models"
)

type BugRepository interface {
	SaveBug(ctx context.Context, bug models.Bug) (uuid.UUID, error)
	GetBugByID(ctx context.Context, bugID uuid.UUID) (*models.Bug, error)
	UpdateBugFields(ctx context.Context, bugID uuid.UUID, updates map[string]interface{}) error
	DeleteBug(ctx context.Context, bugID uuid.UUID) error
	GetBugs(ctx context.Context, page, limit int) ([]models.Bug, error)
	GetBugSummaries(ctx context.Context) ([]models.BugSummary, error)
	GetBugImages(ctx context.Context, bugID uuid.UUID) ([]string, error)
}
