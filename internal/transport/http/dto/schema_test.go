package dto

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validDraft() CreateBugRequest {
	return CreateBugRequest{
		Title:       "Checkout fails on step 2",
		Author:      "lee",
		URL:         "https://shop.example.com/checkout",
		Description: "Pressing continue shows a blank page",
		Category:    "frontend",
	}
}

func TestValidateBug(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *CreateBugRequest)
		wantFields []string
	}{
		{
			name:   "valid draft passes",
			mutate: func(r *CreateBugRequest) {},
		},
		{
			name: "missing title",
			mutate: func(r *CreateBugRequest) {
				r.Title = ""
			},
			wantFields: []string{"title"},
		},
		{
			name: "missing author",
			mutate: func(r *CreateBugRequest) {
				r.Author = ""
			},
			wantFields: []string{"author"},
		},
		{
			name: "malformed url",
			mutate: func(r *CreateBugRequest) {
				r.URL = "not a url"
			},
			wantFields: []string{"url"},
		},
		{
			name: "missing description",
			mutate: func(r *CreateBugRequest) {
				r.Description = ""
			},
			wantFields: []string{"description"},
		},
		{
			name: "title too long",
			mutate: func(r *CreateBugRequest) {
				r.Title = strings.Repeat("x", 256)
			},
			wantFields: []string{"title"},
		},
		{
			name: "title at limit passes",
			mutate: func(r *CreateBugRequest) {
				r.Title = strings.Repeat("x", 255)
			},
		},
		{
			name: "several violations reported together",
			mutate: func(r *CreateBugRequest) {
				r.Title = ""
				r.URL = "bad"
				r.Description = ""
			},
			wantFields: []string{"title", "url", "description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validDraft()
			tt.mutate(&req)

			verr := ValidateBug(&req)

			if len(tt.wantFields) == 0 {
				assert.Nil(t, verr)
				return
			}

			assert.NotNil(t, verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.Contains(t, verr.Fields, field)
			}
		})
	}
}

func TestValidateBug_Messages(t *testing.T) {
	req := validDraft()
	req.Title = ""
	req.URL = "bad"

	verr := ValidateBug(&req)

	assert.NotNil(t, verr)
	assert.Equal(t, "Title is required", verr.Fields["title"])
	assert.Equal(t, "Invalid URL format", verr.Fields["url"])
}

func TestValidateBug_AppliesDefaults(t *testing.T) {
	req := validDraft()
	assert.Empty(t, req.Status)
	assert.Nil(t, req.Images)

	verr := ValidateBug(&req)

	assert.Nil(t, verr)
	assert.Equal(t, "open", req.Status)
	assert.NotNil(t, req.Images)
	assert.Empty(t, req.Images)
}

func TestValidateBugUpdate(t *testing.T) {
	id := uuid.New()

	t.Run("partial draft with valid fields passes", func(t *testing.T) {
		title := "New title"
		verr := ValidateBugUpdate(&UpdateBugRequest{ID: id, Title: &title})
		assert.Nil(t, verr)
	})

	t.Run("absent fields are not checked", func(t *testing.T) {
		verr := ValidateBugUpdate(&UpdateBugRequest{ID: id})
		assert.Nil(t, verr)
	})

	t.Run("present field over limit is rejected", func(t *testing.T) {
		title := strings.Repeat("x", 256)
		verr := ValidateBugUpdate(&UpdateBugRequest{ID: id, Title: &title})
		assert.NotNil(t, verr)
		assert.Contains(t, verr.Fields, "title")
	})

	t.Run("present malformed url is rejected", func(t *testing.T) {
		url := "nope"
		verr := ValidateBugUpdate(&UpdateBugRequest{ID: id, URL: &url})
		assert.NotNil(t, verr)
		assert.Equal(t, "Invalid URL format", verr.Fields["url"])
	})
}
