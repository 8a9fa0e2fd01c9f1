package export

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hpungsan/autord/internal/metrics"
)

// Previews holds exported artifacts behind short-lived handles. A handle
// is valid until released or until its TTL passes.
type Previews struct {
	c *cache.Cache
}

// NewPreviews returns a store whose handles expire after ttl.
func NewPreviews(ttl time.Duration) *Previews {
	cleanup := ttl
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	c := cache.New(ttl, cleanup)
	p := &Previews{c: c}
	c.OnEvicted(func(string, any) {
		metrics.SetPreviewsActive(c.ItemCount())
	})
	return p
}

// Put stores a and returns its handle.
func (p *Previews) Put(a *Artifact) string {
	h := uuid.NewString()
	p.c.SetDefault(h, a)
	metrics.SetPreviewsActive(p.c.ItemCount())
	return h
}

// Get returns the artifact behind handle.
func (p *Previews) Get(handle string) (*Artifact, bool) {
	v, ok := p.c.Get(handle)
	if !ok {
		return nil, false
	}
	a, ok := v.(*Artifact)
	return a, ok
}

// Release drops handle. Releasing an unknown handle is a no-op.
func (p *Previews) Release(handle string) {
	p.c.Delete(handle)
}

// Len returns the number of live handles.
func (p *Previews) Len() int {
	return p.c.ItemCount()
}
