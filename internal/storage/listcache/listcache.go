// Package listcache caches the lightweight bug-list projection. The cache is
// dropped after every mutation, mirroring the dashboard's rule of reloading
// the whole list after any write.
package listcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"bugdash/internal/domain/models"
)

const summaryKey = "bugs:summaries"

// DefaultTTL bounds staleness for entries that outlive the process group
// that wrote them.
const DefaultTTL = 5 * time.Minute

type SummaryCache interface {
	Get(ctx context.Context) ([]models.BugSummary, bool)
	Set(ctx context.Context, summaries []models.BugSummary)
	Invalidate(ctx context.Context)
}

// Memory is the in-process fallback used when no redis address is
// configured.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		c: gocache.New(ttl, 2*ttl),
	}
}

func (m *Memory) Get(_ context.Context) ([]models.BugSummary, bool) {
	v, ok := m.c.Get(summaryKey)
	if !ok {
		return nil, false
	}

	summaries, ok := v.([]models.BugSummary)
	return summaries, ok
}

func (m *Memory) Set(_ context.Context, summaries []models.BugSummary) {
	m.c.Set(summaryKey, summaries, gocache.DefaultExpiration)
}

func (m *Memory) Invalidate(_ context.Context) {
	m.c.Delete(summaryKey)
}
