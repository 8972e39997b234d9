package templates

import (
	"sync"

	"jordanella.com/hshj-locator/internal/cv"
)

// LoadFunc loads a template image from its backing asset
type LoadFunc func() (*cv.TemplateImage, error)

// ImageCache loads the reference template on first use and keeps it for
// later cycles. Failed loads are not cached so a template dropped into
// place while the app runs is picked up on the next cycle.
type ImageCache struct {
	load  LoadFunc
	image *cv.TemplateImage
	mu    sync.RWMutex
	stats CacheStats
}

// CacheStats tracks cache performance
type CacheStats struct {
	Hits    int64 // Served from cache
	Misses  int64 // Had to load
	Loads   int64 // Successful loads
	Fails   int64 // Failed loads
	Unloads int64
}

// NewImageCache creates a cache around a loader
func NewImageCache(load LoadFunc) *ImageCache {
	return &ImageCache{load: load}
}

// Template returns the cached template, loading it if necessary
func (ic *ImageCache) Template() (*cv.TemplateImage, error) {
	// Fast path: image already loaded
	ic.mu.RLock()
	if img := ic.image; img != nil {
		ic.mu.RUnlock()
		ic.mu.Lock()
		ic.stats.Hits++
		ic.mu.Unlock()
		return img, nil
	}
	ic.mu.RUnlock()

	ic.mu.Lock()
	defer ic.mu.Unlock()

	// Double-check after acquiring write lock
	if ic.image != nil {
		ic.stats.Hits++
		return ic.image, nil
	}

	ic.stats.Misses++
	img, err := ic.load()
	if err != nil {
		ic.stats.Fails++
		return nil, err
	}

	ic.image = img
	ic.stats.Loads++
	return img, nil
}

// Unload drops the cached image; the next call reloads it
func (ic *ImageCache) Unload() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.image != nil {
		ic.image = nil
		ic.stats.Unloads++
	}
}

// Stats returns cache statistics
func (ic *ImageCache) Stats() CacheStats {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.stats
}
