package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugdash/internal/client"
	"bugdash/internal/domain/models"
	"bugdash/internal/transport/http/dto"
)

// fakeBackend is an in-memory stand-in for the bug API, speaking the same
// wire contract as the real transport.
type fakeBackend struct {
	bugs []models.Bug
}

func (f *fakeBackend) find(id uuid.UUID) int {
	for i := range f.bugs {
		if f.bugs[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/bugs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sorted := make([]models.Bug, len(f.bugs))
			copy(sorted, f.bugs)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
			})
			json.NewEncoder(w).Encode(dto.BugListResponse{Data: sorted})

		case http.MethodPost:
			var req dto.CreateBugRequest
			json.NewDecoder(r.Body).Decode(&req)

			if req.Title == "" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "Title is required"})
				return
			}

			bug := req.ToBug()
			bug.ID = uuid.New()
			bug.CreatedAt = time.Now()
			bug.UpdatedAt = time.Now()
			if bug.Status == "" {
				bug.Status = models.StatusOpen
			}
			f.bugs = append(f.bugs, bug)
			json.NewEncoder(w).Encode(dto.BugListResponse{Data: []models.Bug{bug}})

		case http.MethodDelete:
			var req dto.DeleteBugRequest
			json.NewDecoder(r.Body).Decode(&req)

			i := f.find(req.ID)
			if i < 0 {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "bug not found"})
				return
			}
			f.bugs = append(f.bugs[:i], f.bugs[i+1:]...)
			json.NewEncoder(w).Encode(map[string]string{"data": req.ID.String()})
		}
	})

	mux.HandleFunc("/api/v1/bugs/update", func(w http.ResponseWriter, r *http.Request) {
		var req dto.UpdateBugRequest
		json.NewDecoder(r.Body).Decode(&req)

		i := f.find(req.ID)
		if i < 0 {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "bug not found"})
			return
		}

		bug := &f.bugs[i]
		if req.Status != nil {
			next := models.BugStatus(*req.Status)
			if err := bug.Status.Transition(next); err != nil {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			bug.Status = next
		}
		if req.Title != nil {
			bug.Title = *req.Title
		}
		if req.ResolvedAt != nil {
			bug.ResolvedAt = req.ResolvedAt
		}
		bug.UpdatedAt = time.Now()

		json.NewEncoder(w).Encode(map[string]string{"message": "Bug updated successfully"})
	})

	mux.HandleFunc("/api/v1/bugs/images", func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid bug ID format"})
			return
		}

		images := []string{}
		if i := f.find(id); i >= 0 {
			images = append(images, f.bugs[i].Images...)
		}
		json.NewEncoder(w).Encode(dto.BugImagesResponse{Images: images})
	})

	return mux
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func newTestStore(t *testing.T, backend *fakeBackend) (*client.BugStore, *recordingNotifier) {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	notifier := &recordingNotifier{}
	return client.NewBugStore(client.NewGateway(srv.URL), notifier), notifier
}

func seedBackend(titles ...string) *fakeBackend {
	backend := &fakeBackend{}
	base := time.Now().Add(-time.Hour)
	for i, title := range titles {
		backend.bugs = append(backend.bugs, models.Bug{
			ID:        uuid.New(),
			Title:     title,
			Author:    "sam",
			URL:       "https://app.example.com",
			Category:  models.CategoryFrontend,
			Status:    models.StatusOpen,
			Images:    []string{},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return backend
}

func TestBugStore_FetchBugs(t *testing.T) {
	ctx := context.Background()

	t.Run("full replace bumps the generation", func(t *testing.T) {
		store, _ := newTestStore(t, seedBackend("one", "two"))

		require.Equal(t, uint64(0), store.Generation())

		require.NoError(t, store.FetchBugs(ctx, 1, 10))
		assert.Len(t, store.Bugs(), 2)
		assert.Equal(t, uint64(1), store.Generation())

		require.NoError(t, store.FetchBugs(ctx, 1, 10))
		assert.Equal(t, uint64(2), store.Generation())
	})

	t.Run("newest update first", func(t *testing.T) {
		store, _ := newTestStore(t, seedBackend("older", "newer"))

		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		bugs := store.Bugs()
		require.Len(t, bugs, 2)
		assert.Equal(t, "newer", bugs[0].Title)
	})

	t.Run("fetch failure keeps previous cache", func(t *testing.T) {
		backend := seedBackend("one")
		srv := httptest.NewServer(backend.handler())

		notifier := &recordingNotifier{}
		store := client.NewBugStore(client.NewGateway(srv.URL), notifier)

		require.NoError(t, store.FetchBugs(ctx, 1, 10))
		require.Len(t, store.Bugs(), 1)
		gen := store.Generation()

		srv.Close()

		assert.Error(t, store.FetchBugs(ctx, 1, 10))
		assert.Len(t, store.Bugs(), 1)
		assert.Equal(t, gen, store.Generation())
		assert.NotEmpty(t, notifier.errors)
	})
}

func TestBugStore_SubmitBug(t *testing.T) {
	ctx := context.Background()

	form := dto.CreateBugRequest{
		Title:       "Fresh bug",
		Author:      "sam",
		URL:         "https://app.example.com/new",
		Description: "it broke",
		Category:    "frontend",
		Status:      "open",
	}

	t.Run("create path refetches the list", func(t *testing.T) {
		store, notifier := newTestStore(t, seedBackend("existing"))
		require.NoError(t, store.FetchBugs(ctx, 1, 10))
		gen := store.Generation()

		require.NoError(t, store.SubmitBug(ctx, form))

		assert.Len(t, store.Bugs(), 2)
		assert.Greater(t, store.Generation(), gen)
		assert.Contains(t, notifier.successes, "Bug submitted successfully")
	})

	t.Run("edit path updates the picked record and clears editing", func(t *testing.T) {
		backend := seedBackend("existing")
		store, notifier := newTestStore(t, backend)
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		target := store.Bugs()[0]
		store.StartEditing(target)

		edited := form
		edited.Title = "Renamed bug"
		require.NoError(t, store.SubmitBug(ctx, edited))

		assert.Len(t, store.Bugs(), 1)
		assert.Equal(t, "Renamed bug", store.Bugs()[0].Title)
		assert.Nil(t, store.Editing())
		assert.Contains(t, notifier.successes, "Bug updated successfully")
	})

	t.Run("editing cleared even when the write fails", func(t *testing.T) {
		backend := seedBackend("existing")
		store, _ := newTestStore(t, backend)
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		ghost := store.Bugs()[0]
		ghost.ID = uuid.New()
		store.StartEditing(ghost)

		assert.Error(t, store.SubmitBug(ctx, form))
		assert.Nil(t, store.Editing())
	})

	t.Run("backend validation message reaches the notifier", func(t *testing.T) {
		store, notifier := newTestStore(t, seedBackend())

		bad := form
		bad.Title = ""
		err := store.SubmitBug(ctx, bad)

		require.Error(t, err)

		var serr *client.StoreError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusBadRequest, serr.Status)
		assert.Equal(t, "Title is required", serr.Message)
		assert.NotEmpty(t, notifier.errors)
	})
}

func TestBugStore_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("resolving stamps resolvedAt", func(t *testing.T) {
		backend := seedBackend("bug")
		store, _ := newTestStore(t, backend)
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		id := store.Bugs()[0].ID
		require.NoError(t, store.ChangeStatus(ctx, id, models.StatusResolved))

		bugs := store.Bugs()
		require.Len(t, bugs, 1)
		assert.Equal(t, models.StatusResolved, bugs[0].Status)
		require.NotNil(t, bugs[0].ResolvedAt)
		assert.WithinDuration(t, time.Now(), *bugs[0].ResolvedAt, 5*time.Second)
	})

	t.Run("reopening keeps the old resolvedAt", func(t *testing.T) {
		backend := seedBackend("bug")
		store, _ := newTestStore(t, backend)
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		id := store.Bugs()[0].ID
		require.NoError(t, store.ChangeStatus(ctx, id, models.StatusResolved))

		resolvedAt := *store.Bugs()[0].ResolvedAt

		require.NoError(t, store.ChangeStatus(ctx, id, models.StatusOpen))

		bugs := store.Bugs()
		assert.Equal(t, models.StatusOpen, bugs[0].Status)
		require.NotNil(t, bugs[0].ResolvedAt)
		assert.WithinDuration(t, resolvedAt, *bugs[0].ResolvedAt, time.Second)
	})

	t.Run("rejected transition surfaces the backend message", func(t *testing.T) {
		backend := seedBackend("bug")
		store, notifier := newTestStore(t, backend)
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		id := store.Bugs()[0].ID
		require.NoError(t, store.ChangeStatus(ctx, id, models.StatusResolved))

		err := store.ChangeStatus(ctx, id, models.StatusNeedReview)
		require.Error(t, err)

		var serr *client.StoreError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusConflict, serr.Status)
		assert.NotEmpty(t, notifier.errors)

		// Status unchanged on the server.
		require.NoError(t, store.FetchBugs(ctx, 1, 10))
		assert.Equal(t, models.StatusResolved, store.Bugs()[0].Status)
	})
}

func TestBugStore_DeleteBug(t *testing.T) {
	ctx := context.Background()

	t.Run("successful delete shrinks the list", func(t *testing.T) {
		store, notifier := newTestStore(t, seedBackend("one", "two"))
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		id := store.Bugs()[0].ID
		assert.True(t, store.DeleteBug(ctx, id))

		assert.Len(t, store.Bugs(), 1)
		assert.Contains(t, notifier.successes, "Bug deleted")
	})

	t.Run("unknown id reports failure", func(t *testing.T) {
		store, notifier := newTestStore(t, seedBackend("one"))
		require.NoError(t, store.FetchBugs(ctx, 1, 10))

		assert.False(t, store.DeleteBug(ctx, uuid.New()))
		assert.Len(t, store.Bugs(), 1)
		assert.NotEmpty(t, notifier.errors)
	})
}

func TestBugStore_FetchImages(t *testing.T) {
	ctx := context.Background()

	backend := seedBackend("with images", "without")
	backend.bugs[0].Images = []string{"2026/01/a.png", "2026/01/b.png"}

	store, _ := newTestStore(t, backend)
	require.NoError(t, store.FetchBugs(ctx, 1, 10))

	t.Run("images returned for a record that has them", func(t *testing.T) {
		images, err := store.FetchImages(ctx, backend.bugs[0].ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"2026/01/a.png", "2026/01/b.png"}, images)
	})

	t.Run("record without images yields empty list", func(t *testing.T) {
		images, err := store.FetchImages(ctx, backend.bugs[1].ID)
		require.NoError(t, err)
		assert.Empty(t, images)
	})

	t.Run("unknown id yields empty list not error", func(t *testing.T) {
		images, err := store.FetchImages(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, images)
	})
}
