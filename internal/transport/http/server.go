package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bugdash/internal/domain/models"
	"bugdash/internal/lib/logger/sl"
	"bugdash/internal/storage"
	"bugdash/internal/storage/filestorage"
	"bugdash/internal/transport/http/dto"
	"bugdash/internal/transport/http/dto/response"
)

type BugService interface {
	CreateBug(ctx context.Context, req dto.CreateBugRequest) (*models.Bug, error)
	UpdateBug(ctx context.Context, req dto.UpdateBugRequest) (*models.Bug, error)
	DeleteBug(ctx context.Context, bugID uuid.UUID) error
	ListBugs(ctx context.Context, page, limit int) ([]models.Bug, error)
	ListBugSummaries(ctx context.Context) ([]models.BugSummary, error)
	GetBugImages(ctx context.Context, bugID uuid.UUID) ([]string, error)
}

type Routers struct {
	log         *slog.Logger
	BugService  BugService
	Screenshots filestorage.ScreenshotStorage
}

func NewRouter(log *slog.Logger, bugService BugService, screenshots filestorage.ScreenshotStorage) *Routers {
	return &Routers{
		log:         log,
		BugService:  bugService,
		Screenshots: screenshots,
	}
}

// errorStatus maps service failures onto the differentiated error taxonomy:
// 400 for validation, 404 for unknown ids, 409 for disallowed status
// transitions, 500 for anything the backing store reports.
func errorStatus(err error) int {
	var verr *dto.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrBugNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateBug godoc
// @Summary Submit a bug report
// @Description Inserts one bug record. Returns the persisted record list, matching the insert round trip of the dashboard.
// @Tags Bugs
// @Accept json
// @Produce json
// @Param request body dto.CreateBugRequest true "Bug report"
// @Success 200 {object} response.Response{data=[]models.Bug}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs [post]
func (r *Routers) CreateBug(c echo.Context) error {
	const op = "http.routers.CreateBug"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateBugRequest

	if err := c.Bind(&req); err != nil {
		log.Error("invalid request data", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Error("invalid request data"))
	}

	bug, err := r.BugService.CreateBug(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to create bug", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, response.Data([]models.Bug{*bug}))
}

// ListBugs godoc
// @Summary List bug reports
// @Description Returns one page ordered by last update, newest first.
// @Tags Bugs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} response.Response{data=[]models.Bug}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs [get]
func (r *Routers) ListBugs(c echo.Context) error {
	const op = "http.routers.ListBugs"

	log := r.log.With(
		slog.String("op", op),
	)

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	bugs, err := r.BugService.ListBugs(c.Request().Context(), page, limit)
	if err != nil {
		log.Error("failed to list bugs", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, response.Data(bugs))
}

// ListBugSummaries godoc
// @Summary List bug reports without image payloads
// @Description Lightweight list: each record carries image_count instead of the images themselves.
// @Tags Bugs
// @Produce json
// @Success 200 {object} response.Response{data=[]models.BugSummary}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs/summary [get]
func (r *Routers) ListBugSummaries(c echo.Context) error {
	const op = "http.routers.ListBugSummaries"

	log := r.log.With(
		slog.String("op", op),
	)

	summaries, err := r.BugService.ListBugSummaries(c.Request().Context())
	if err != nil {
		log.Error("failed to list bug summaries", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, response.Data(summaries))
}

// UpdateBug godoc
// @Summary Update a bug report
// @Description Merges the supplied fields into the record matched by id. Later writers win; status changes are checked against the transition table.
// @Tags Bugs
// @Accept json
// @Produce json
// @Param request body dto.UpdateBugRequest true "Full or partial bug record including id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs/update [post]
func (r *Routers) UpdateBug(c echo.Context) error {
	const op = "http.routers.UpdateBug"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UpdateBugRequest

	if err := c.Bind(&req); err != nil {
		log.Error("invalid request data", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Error("invalid request data"))
	}

	if req.ID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, response.Error("id is required"))
	}

	_, err := r.BugService.UpdateBug(c.Request().Context(), req)
	if err != nil {
		log.Error("failed to update bug", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, response.Message("Bug updated successfully"))
}

// DeleteBug godoc
// @Summary Delete a bug report
// @Description Permanently removes the record matched by id.
// @Tags Bugs
// @Accept json
// @Produce json
// @Param request body dto.DeleteBugRequest true "Record id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs [delete]
func (r *Routers) DeleteBug(c echo.Context) error {
	const op = "http.routers.DeleteBug"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.DeleteBugRequest

	if err := c.Bind(&req); err != nil {
		log.Error("invalid request data", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Error("invalid request data"))
	}

	if req.ID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, response.Error("id is required"))
	}

	if err := r.BugService.DeleteBug(c.Request().Context(), req.ID); err != nil {
		log.Error("failed to delete bug", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, response.Data(req.ID))
}

// GetBugImages godoc
// @Summary Get the images of one bug report
// @Description Narrow read of the images column, flattened to a single list. An unknown id yields an empty list, not an error.
// @Tags Bugs
// @Produce json
// @Param id query string true "Bug UUID" format(uuid)
// @Success 200 {object} dto.BugImagesResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/bugs/images [get]
func (r *Routers) GetBugImages(c echo.Context) error {
	const op = "http.routers.GetBugImages"

	log := r.log.With(
		slog.String("op", op),
	)

	bugID, err := uuid.Parse(c.QueryParam("id"))
	if err != nil {
		log.Error("invalid bug ID format", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Error("invalid bug ID format"))
	}

	images, err := r.BugService.GetBugImages(c.Request().Context(), bugID)
	if err != nil {
		log.Error("failed to get bug images", sl.Err(err))
		return c.JSON(errorStatus(err), response.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, dto.BugImagesResponse{Images: images})
}

// UploadScreenshot godoc
// @Summary Upload a screenshot
// @Description Stores the file and returns the opaque reference to put into a bug's images list.
// @Tags Images
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} response.Response{data=dto.UploadImageResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/images/upload [post]
func (r *Routers) UploadScreenshot(c echo.Context) error {
	const op = "http.routers.UploadScreenshot"

	log := r.log.With(
		slog.String("op", op),
	)

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.Error("File is required"))
	}

	ref, size, err := r.Screenshots.Save(c.Request().Context(), file)
	if err != nil {
		log.Error("failed to store screenshot",
			sl.Err(err),
			slog.String("filename", file.Filename),
		)
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, response.Error(err.Error()))
		case errors.Is(err, storage.ErrInvalidFileType):
			return c.JSON(http.StatusUnsupportedMediaType, response.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
		}
	}

	log.Info("screenshot stored",
		slog.String("ref", ref),
		slog.Int64("size", size),
	)

	return c.JSON(http.StatusCreated, response.Data(dto.UploadImageResponse{
		Path: "/uploads/" + ref,
		Size: size,
	}))
}
