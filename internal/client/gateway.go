// Package client is the consumer side of the bug API: a thin HTTP gateway
// plus a session-scoped store that mirrors how the dashboard holds and
// refreshes its bug list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bugdash/internal/domain/models"
	"bugdash/internal/transport/http/dto"
)

// StoreError carries the backend's error message together with the HTTP
// status it arrived with.
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

type Gateway struct {
	baseURL string
	http    *http.Client
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	const op = "client.Gateway.do"

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return &StoreError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// CreateBug submits a report and returns the persisted records echoed back
// by the server.
func (g *Gateway) CreateBug(ctx context.Context, req dto.CreateBugRequest) ([]models.Bug, error) {
	var out dto.BugListResponse
	if err := g.do(ctx, http.MethodPost, "/api/v1/bugs", req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (g *Gateway) ListBugs(ctx context.Context, page, limit int) ([]models.Bug, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out dto.BugListResponse
	if err := g.do(ctx, http.MethodGet, "/api/v1/bugs?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (g *Gateway) ListSummaries(ctx context.Context) ([]models.BugSummary, error) {
	var out dto.BugSummaryListResponse
	if err := g.do(ctx, http.MethodGet, "/api/v1/bugs/summary", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (g *Gateway) UpdateBug(ctx context.Context, req dto.UpdateBugRequest) error {
	return g.do(ctx, http.MethodPost, "/api/v1/bugs/update", req, nil)
}

func (g *Gateway) DeleteBug(ctx context.Context, bugID uuid.UUID) error {
	return g.do(ctx, http.MethodDelete, "/api/v1/bugs", dto.DeleteBugRequest{ID: bugID}, nil)
}

func (g *Gateway) GetImages(ctx context.Context, bugID uuid.UUID) ([]string, error) {
	var out dto.BugImagesResponse
	if err := g.do(ctx, http.MethodGet, "/api/v1/bugs/images?id="+bugID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}
