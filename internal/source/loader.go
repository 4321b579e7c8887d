// Package source locates and reads scene files and the resources they name.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/scenefile/pkg/encoding"
	"github.com/Faultbox/scenefile/pkg/scene"
)

// ErrNotFound is returned when a source cannot be located.
var ErrNotFound = errors.New("source not found")

// Options configures a Loader.
type Options struct {
	SearchPaths []string // Directories tried after the identifier itself
	Charset     string   // Source charset, see encoding.Lookup
	Cache       bool     // Keep decoded sources in memory
	Logger      *zap.Logger
}

// Loader resolves source identifiers to decoded scene text.
type Loader struct {
	searchPaths []string
	charset     string
	cache       *Cache
	log         *zap.Logger
	mu          sync.RWMutex
}

// NewLoader creates a loader. The charset is validated up front.
func NewLoader(opts Options) (*Loader, error) {
	if _, err := encoding.Lookup(opts.Charset); err != nil {
		return nil, err
	}

	l := &Loader{
		charset: opts.Charset,
		log:     opts.Logger,
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if opts.Cache {
		l.cache = NewCache()
	}
	for _, p := range opts.SearchPaths {
		l.AddSearchPath(p)
	}
	return l, nil
}

// AddSearchPath adds a directory to search.
// Paths are searched in reverse order (last added = highest priority).
func (l *Loader) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	l.mu.Lock()
	l.searchPaths = append(l.searchPaths, filepath.Clean(dir))
	l.mu.Unlock()
}

// SearchPaths returns the configured directories in priority order.
func (l *Loader) SearchPaths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	paths := make([]string, 0, len(l.searchPaths))
	for i := len(l.searchPaths) - 1; i >= 0; i-- {
		paths = append(paths, l.searchPaths[i])
	}
	return paths
}

// Resolve returns the path of the file identified by id. The identifier is
// tried as given first, then relative to each search path.
func (l *Loader) Resolve(id string) (string, error) {
	id = NormalizePath(id)
	if isFile(id) {
		return id, nil
	}
	if !filepath.IsAbs(id) {
		for _, dir := range l.SearchPaths() {
			candidate := filepath.Join(dir, id)
			if isFile(candidate) {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Read returns the decoded contents of the source identified by id.
// An empty file yields scene.ErrEmptySource.
func (l *Loader) Read(id string) ([]byte, error) {
	path, err := l.Resolve(id)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if data, ok := l.cache.Get(path); ok {
			return data, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s", scene.ErrEmptySource, path)
	}

	data, err := encoding.Decode(raw, l.charset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.log.Debug("source read",
		zap.String("id", id),
		zap.String("path", path),
		zap.Int("bytes", len(raw)))

	if l.cache != nil {
		l.cache.Set(path, data)
	}
	return data, nil
}

// LoadScene reads the source identified by id into s. The scene is cleared
// first and stays empty if the source is missing or empty.
func (l *Loader) LoadScene(id string, s *scene.Scene, opts ...scene.Option) error {
	s.Reset()

	data, err := l.Read(id)
	if err != nil {
		l.log.Warn("scene source unavailable", zap.String("id", id), zap.Error(err))
		return err
	}

	opts = append([]scene.Option{scene.WithLogger(l.log)}, opts...)
	return s.Load(data, opts...)
}

// ResolveResource finds a file named by a scene record. It looks next to the
// scene first, then in the search paths. When the exact name is missing,
// each of exts is tried in place of the file's extension.
func (l *Loader) ResolveResource(file, sceneDir string, exts []string) (string, bool) {
	file = NormalizePath(file)
	if file == "" {
		return "", false
	}

	bases := []string{file}
	base := strings.TrimSuffix(file, filepath.Ext(file))
	for _, ext := range exts {
		if candidate := base + ext; candidate != file {
			bases = append(bases, candidate)
		}
	}

	dirs := append([]string{sceneDir}, l.SearchPaths()...)
	for _, name := range bases {
		if filepath.IsAbs(name) {
			if isFile(name) {
				return name, true
			}
			continue
		}
		for _, dir := range dirs {
			candidate := filepath.Join(dir, name)
			if isFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// CacheStats returns cache hits and misses, or zeros when caching is off.
func (l *Loader) CacheStats() (hits, misses int) {
	if l.cache == nil {
		return 0, 0
	}
	return l.cache.Stats()
}

// Close drops cached sources.
func (l *Loader) Close() {
	if l.cache != nil {
		l.cache.Clear()
	}
}

// NormalizePath converts Windows separators so that scenes authored on
// either platform resolve the same way.
func NormalizePath(path string) string {
	return filepath.FromSlash(strings.ReplaceAll(path, "\\", "/"))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache is a simple in-memory cache for decoded sources.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
