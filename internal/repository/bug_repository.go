package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"bugdash/internal/domain/models"
	"bugdash/internal/storage"
)

const bugTable = "bugs"

type BugRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewBugRepository(db *pgxpool.Pool) *BugRepo {
	return &BugRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (b *BugRepo) SaveBug(ctx context.Context, bug models.Bug) (uuid.UUID, error) {
	const op = "repository.bug_repository.SaveBug"

	if bug.Images == nil {
		bug.Images = []string{}
	}

	query, args, err := b.sb.Insert(bugTable).
		Columns(
			"title",
			"author",
			"url",
			"description",
			"images",
			"category",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			bug.Title,
			bug.Author,
			bug.URL,
			bug.Description,
			bug.Images,
			bug.Category,
			bug.Status,
			bug.CreatedAt,
			bug.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = b.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (b *BugRepo) GetBugByID(ctx context.Context, bugID uuid.UUID) (*models.Bug, error) {
	const op = "repository.bug_repository.GetBugByID"

	query, args, err := b.sb.Select(
		"id", "title", "author", "url", "description", "images",
		"category", "status", "created_at", "updated_at", "resolved_at", "dev_note",
	).
		From(bugTable).
		Where(sq.Eq{"id": bugID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var bug models.Bug
	var resolvedAt sql.NullTime
	var devNote sql.NullString

	err = b.db.QueryRow(ctx, query, args...).Scan(
		&bug.ID,
		&bug.Title,
		&bug.Author,
		&bug.URL,
		&bug.Description,
		&bug.Images,
		&bug.Category,
		&bug.Status,
		&bug.CreatedAt,
		&bug.UpdatedAt,
		&resolvedAt,
		&devNote,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrBugNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resolvedAt.Valid {
		bug.ResolvedAt = &resolvedAt.Time
	}
	bug.DevNote = devNote.String

	return &bug, nil
}

// UpdateBugFields merges the given fields into the record matched by id.
// There is no concurrency token: the later writer wins for every field it
// included.
func (b *BugRepo) UpdateBugFields(ctx context.Context, bugID uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.bug_repository.UpdateBugFields"

	allowedFields := map[string]bool{
		"title":       true,
		"author":      true,
		"url":         true,
		"description": true,
		"images":      true,
		"category":    true,
		"status":      true,
		"resolved_at": true,
		"dev_note":    true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := b.sb.Update(bugTable).
		Set("updated_at", time.Now())

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	updateBuilder = updateBuilder.Where(sq.Eq{"id": bugID})

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrBugNotFound)
	}

	return nil
}

func (b *BugRepo) DeleteBug(ctx context.Context, bugID uuid.UUID) error {
	const op = "repository.bug_repository.DeleteBug"

	query, args, err := b.sb.Delete(bugTable).
		Where(sq.Eq{"id": bugID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrBugNotFound)
	}

	return nil
}

// GetBugs returns one page ordered by last update, newest first. The page is
// addressed with the dashboard's inclusive range (start..end), converted here
// to OFFSET/LIMIT.
func (b *BugRepo) GetBugs(ctx context.Context, page, limit int) ([]models.Bug, error) {
	const op = "repository.bug_repository.GetBugs"

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	start := (page - 1) * limit
	end := start + limit - 1

	query, args, err := b.sb.Select(
		"id", "title", "author", "url", "description", "images",
		"category", "status", "created_at", "updated_at", "resolved_at", "dev_note",
	).
		From(bugTable).
		OrderBy("updated_at DESC").
		Offset(uint64(start)).
		Limit(uint64(end - start + 1)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	bugs := make([]models.Bug, 0, limit)
	for rows.Next() {
		var bug models.Bug
		var resolvedAt sql.NullTime
		var devNote sql.NullString

		err := rows.Scan(
			&bug.ID,
			&bug.Title,
			&bug.Author,
			&bug.URL,
			&bug.Description,
			&bug.Images,
			&bug.Category,
			&bug.Status,
			&bug.CreatedAt,
			&bug.UpdatedAt,
			&resolvedAt,
			&devNote,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if resolvedAt.Valid {
			bug.ResolvedAt = &resolvedAt.Time
		}
		bug.DevNote = devNote.String

		bugs = append(bugs, bug)
	}

	return bugs, nil
}

// GetBugSummaries is the lightweight list: image payloads replaced with a
// count so the dashboard stays cheap when reports carry many screenshots.
func (b *BugRepo) GetBugSummaries(ctx context.Context) ([]models.BugSummary, error) {
	const op = "repository.bug_repository.GetBugSummaries"

	query, args, err := b.sb.Select(
		"id", "title", "author", "url", "description",
		"category", "status", "created_at", "updated_at", "resolved_at",
		"COALESCE(cardinality(images), 0) AS image_count", "dev_note",
	).
		From(bugTable).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	summaries := make([]models.BugSummary, 0)
	for rows.Next() {
		var s models.BugSummary
		var resolvedAt sql.NullTime
		var devNote sql.NullString

		err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Author,
			&s.URL,
			&s.Description,
			&s.Category,
			&s.Status,
			&s.CreatedAt,
			&s.UpdatedAt,
			&resolvedAt,
			&s.ImageCount,
			&devNote,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if resolvedAt.Valid {
			s.ResolvedAt = &resolvedAt.Time
		}
		s.DevNote = devNote.String

		summaries = append(summaries, s)
	}

	return summaries, nil
}

// GetBugImages reads only the images column for every record matching the
// id and flattens the result into one sequence. A bug with no images (or an
// unknown id) yields an empty slice, not an error.
func (b *BugRepo) GetBugImages(ctx context.Context, bugID uuid.UUID) ([]string, error) {
	const op = "repository.bug_repository.GetBugImages"

	query, args, err := b.sb.Select("images").
		From(bugTable).
		Where(sq.Eq{"id": bugID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := b.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	images := make([]string, 0)
	for rows.Next() {
		var batch []string
		if err := rows.Scan(&batch); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, batch...)
	}

	return images, nil
}
