package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bugdash/internal/domain/models"
	"bugdash/internal/repository"
	"bugdash/internal/storage/listcache"
	"bugdash/internal/transport/http/dto"
)

type BugService struct {
	log   *slog.Logger
	repo  repository.BugRepository
	cache listcache.SummaryCache
}

func NewBugService(log *slog.Logger, repo repository.BugRepository, cache listcache.SummaryCache) *BugService {
	return &BugService{log: log, repo: repo, cache: cache}
}

// CreateBug validates the submission draft, stamps timestamps and persists
// it. The created record is returned whole, as the dashboard expects the
// insert round trip to echo the stored row.
func (s *BugService) CreateBug(ctx context.Context, req dto.CreateBugRequest) (*models.Bug, error) {
	const op = "bug_service.CreateBug"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating bug report")

	if verr := dto.ValidateBug(&req); verr != nil {
		log.Warn("bug report failed validation", slog.Any("fields", verr.Fields))
		return nil, verr
	}

	bug := req.ToBug()

	if !bug.Category.Valid() {
		return nil, &dto.ValidationError{Fields: map[string]string{
			"category": fmt.Sprintf("Category must be one of: %s, %s", models.CategoryFrontend, models.CategoryBackend),
		}}
	}
	if !bug.Status.Valid() {
		return nil, &dto.ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("Status %q is not recognized", bug.Status),
		}}
	}

	now := time.Now()
	bug.CreatedAt = now
	bug.UpdatedAt = now

	id, err := s.repo.SaveBug(ctx, bug)
	if err != nil {
		log.Error("failed to create bug report", slog.Any("err", err))
		return nil, fmt.Errorf("failed to create bug report: %w", err)
	}

	s.cache.Invalidate(ctx)

	log.Info("bug report created", slog.String("bug_id", id.String()))
	return s.repo.GetBugByID(ctx, id)
}

// UpdateBug overlays the fields present on the edit draft onto the stored
// record. When the draft includes a status, the change is checked against the
// transition table; everything else is merged last-writer-wins.
func (s *BugService) UpdateBug(ctx context.Context, req dto.UpdateBugRequest) (*models.Bug, error) {
	const op = "bug_service.UpdateBug"
	log := s.log.With(
		slog.String("op", op),
		slog.String("bug_id", req.ID.String()),
	)

	log.Info("updating bug report")

	if verr := dto.ValidateBugUpdate(&req); verr != nil {
		log.Warn("bug update failed validation", slog.Any("fields", verr.Fields))
		return nil, verr
	}

	existing, err := s.repo.GetBugByID(ctx, req.ID)
	if err != nil {
		log.Error("failed to get bug report", slog.Any("err", err))
		return nil, fmt.Errorf("failed to get bug report: %w", err)
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Images != nil {
		updates["images"] = *req.Images
	}
	if req.Category != nil {
		category := models.BugCategory(*req.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
		}
		updates["category"] = category
	}
	if req.Status != nil {
		next := models.BugStatus(*req.Status)
		if err := existing.Status.Transition(next); err != nil {
			log.Warn("rejected status change",
				slog.String("from", string(existing.Status)),
				slog.String("to", string(next)),
			)
			return nil, err
		}
		updates["status"] = next
	}
	if req.ResolvedAt != nil {
		updates["resolved_at"] = *req.ResolvedAt
	}
	if req.DevNote != nil {
		updates["dev_note"] = *req.DevNote
	}

	err = s.repo.UpdateBugFields(ctx, req.ID, updates)
	if err != nil {
		log.Error("failed to update bug report", slog.Any("err", err))
		return nil, fmt.Errorf("failed to update bug report: %w", err)
	}

	s.cache.Invalidate(ctx)

	log.Info("bug report updated")
	return s.repo.GetBugByID(ctx, req.ID)
}

func (s *BugService) DeleteBug(ctx context.Context, bugID uuid.UUID) error {
	const op = "bug_service.DeleteBug"
	log := s.log.With(
		slog.String("op", op),
		slog.String("bug_id", bugID.String()),
	)

	log.Info("deleting bug report")

	err := s.repo.DeleteBug(ctx, bugID)
	if err != nil {
		log.Error("failed to delete bug report", slog.Any("err", err))
		return fmt.Errorf("failed to delete bug report: %w", err)
	}

	s.cache.Invalidate(ctx)

	log.Info("bug report deleted")
	return nil
}

func (s *BugService) ListBugs(ctx context.Context, page, limit int) ([]models.Bug, error) {
	const op = "bug_service.ListBugs"
	log := s.log.With(
		slog.String("op", op),
		slog.Int("page", page),
		slog.Int("limit", limit),
	)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	bugs, err := s.repo.GetBugs(ctx, page, limit)
	if err != nil {
		log.Error("failed to list bug reports", slog.Any("err", err))
		return nil, fmt.Errorf("failed to list bug reports: %w", err)
	}

	log.Info("bug reports listed", slog.Int("count", len(bugs)))
	return bugs, nil
}

// ListBugSummaries serves the lightweight list, preferring the projection
// cache. Every mutation drops the cache, so a hit is never staler than the
// last write through this process group.
func (s *BugService) ListBugSummaries(ctx context.Context) ([]models.BugSummary, error) {
	const op = "bug_service.ListBugSummaries"
	log := s.log.With(slog.String("op", op))

	if summaries, ok := s.cache.Get(ctx); ok {
		log.Debug("summary cache hit", slog.Int("count", len(summaries)))
		return summaries, nil
	}

	summaries, err := s.repo.GetBugSummaries(ctx)
	if err != nil {
		log.Error("failed to list bug summaries", slog.Any("err", err))
		return nil, fmt.Errorf("failed to list bug summaries: %w", err)
	}

	s.cache.Set(ctx, summaries)

	log.Info("bug summaries listed", slog.Int("count", len(summaries)))
	return summaries, nil
}

func (s *BugService) GetBugImages(ctx context.Context, bugID uuid.UUID) ([]string, error) {
	const op = "bug_service.GetBugImages"
	log := s.log.With(
		slog.String("op", op),
		slog.String("bug_id", bugID.String()),
	)

	images, err := s.repo.GetBugImages(ctx, bugID)
	if err != nil {
		log.Error("failed to get bug images", slog.Any("err", err))
		return nil, fmt.Errorf("failed to get bug images: %w", err)
	}

	log.Info("bug images fetched", slog.Int("count", len(images)))
	return images, nil
}
