// Package workspace provides process-wide caches for rules that look beyond
// the file being linted, such as relative-link existence checks and project
// navigation validation.
//
// The caches are explicit values handed to the engine, never ambient global
// state. Every entry is keyed by the content hash of the document (or project
// file) that produced it, so a long-lived process such as an editor
// integration can invalidate stale state precisely when a file's content
// changes, rather than guessing from paths alone.
package workspace

import (
	"crypto/sha256"
	"os"
	"sync"
)

// Hash identifies a specific version of a file's content.
type Hash = [32]byte

// HashContent computes the content hash used to key cache entries.
func HashContent(content []byte) Hash {
	return sha256.Sum256(content)
}

// Workspace bundles the cross-file caches shared by all workers in a run.
// A single Workspace may live for the whole process in editor-style
// integrations; per-invocation runs create a fresh one.
type Workspace struct {
	Files    *FileExistenceCache
	Projects *ProjectValidationCache
}

// New creates a Workspace with empty caches.
func New() *Workspace {
	return &Workspace{
		Files:    NewFileExistenceCache(),
		Projects: NewProjectValidationCache(),
	}
}

// InvalidateByHash drops all cached state derived from the given content hash.
func (w *Workspace) InvalidateByHash(hash Hash) {
	w.Files.InvalidateByHash(hash)
	w.Projects.InvalidateByHash(hash)
}

type existenceKey struct {
	path string
	hash Hash
}

// FileExistenceCache caches filesystem existence probes for link targets.
//
// Entries are keyed by (target path, source document hash): repeated links
// within one document and re-lints of an unchanged document hit the cache,
// while a changed document re-probes its targets, picking up files created
// or deleted since the previous pass.
type FileExistenceCache struct {
	mu      sync.RWMutex
	entries map[existenceKey]bool
}

// NewFileExistenceCache creates an empty existence cache.
func NewFileExistenceCache() *FileExistenceCache {
	return &FileExistenceCache{entries: make(map[existenceKey]bool)}
}

// GetOrInsert returns the cached existence result for target under the given
// document hash, running probe and recording its result on a miss.
//
// The probe runs outside the lock so slow filesystem access never serializes
// other workers; concurrent misses on the same key may probe twice, which is
// harmless for an idempotent check.
func (c *FileExistenceCache) GetOrInsert(target string, docHash Hash, probe func(string) bool) bool {
	key := existenceKey{path: target, hash: docHash}

	c.mu.RLock()
	exists, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return exists
	}

	exists = probe(target)

	c.mu.Lock()
	c.entries[key] = exists
	c.mu.Unlock()
	return exists
}

// Exists reports whether target exists on disk, using the cache.
func (c *FileExistenceCache) Exists(target string, docHash Hash) bool {
	return c.GetOrInsert(target, docHash, func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	})
}

// InvalidateByHash drops every entry recorded under the given content hash.
func (c *FileExistenceCache) InvalidateByHash(hash Hash) {
	c.mu.Lock()
	for key := range c.entries {
		if key.hash == hash {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *FileExistenceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *FileExistenceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[existenceKey]bool)
	c.mu.Unlock()
}

// ProjectValidationCache remembers which project configuration files (for
// example mkdocs.yml) have already been validated, so a run over a large
// project validates each one once per content version instead of once per
// markdown file.
type ProjectValidationCache struct {
	mu     sync.RWMutex
	hashes map[string]Hash
}

// NewProjectValidationCache creates an empty validation cache.
func NewProjectValidationCache() *ProjectValidationCache {
	return &ProjectValidationCache{hashes: make(map[string]Hash)}
}

// GetOrInsert reports whether path was already validated at the given content
// hash. On a miss it records the pair and returns false so the caller runs
// the validation; a changed hash for a known path replaces the old entry.
func (c *ProjectValidationCache) GetOrInsert(path string, hash Hash) bool {
	c.mu.RLock()
	stored, ok := c.hashes[path]
	c.mu.RUnlock()
	if ok && stored == hash {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stored, ok := c.hashes[path]; ok && stored == hash {
		return true
	}
	c.hashes[path] = hash
	return false
}

// InvalidateByHash forgets every project whose recorded content hash matches.
func (c *ProjectValidationCache) InvalidateByHash(hash Hash) {
	c.mu.Lock()
	for path, stored := range c.hashes {
		if stored == hash {
			delete(c.hashes, path)
		}
	}
	c.mu.Unlock()
}

// InvalidatePath forgets the recorded validation for a single project file.
func (c *ProjectValidationCache) InvalidatePath(path string) {
	c.mu.Lock()
	delete(c.hashes, path)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *ProjectValidationCache) Clear() {
	c.mu.Lock()
	c.hashes = make(map[string]Hash)
	c.mu.Unlock()
}
