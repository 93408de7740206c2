package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/devdedup/pkg/persist"
)

// cacheKeyLen is the number of hex digits of the repo path digest used
// in cache filenames.
const cacheKeyLen = 16

// Cache persists extracted records on disk as LZ4-compressed JSON so
// repeated runs against the same repository skip the history walk.
type Cache struct {
	dir string
}

// NewCache creates a record cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Load returns the cached records for the repository, or false when no
// usable cache entry exists.
func (c *Cache) Load(repoPath string) ([]Record, bool) {
	var records []Record

	persister := persist.NewPersister[[]Record](cacheBasename(repoPath), persist.NewLZ4JSONCodec())

	err := persister.Load(c.dir, func(state *[]Record) {
		records = *state
	})
	if err != nil {
		return nil, false
	}

	return records, true
}

// Save writes the records for the repository to the cache directory,
// creating it if needed.
func (c *Cache) Save(repoPath string, records []Record) error {
	err := os.MkdirAll(c.dir, 0o755)
	if err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	persister := persist.NewPersister[[]Record](cacheBasename(repoPath), persist.NewLZ4JSONCodec())

	err = persister.Save(c.dir, func() *[]Record {
		return &records
	})
	if err != nil {
		return fmt.Errorf("save record cache: %w", err)
	}

	return nil
}

// cacheBasename derives a stable filename from the repository path.
func cacheBasename(repoPath string) string {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		abs = repoPath
	}

	sum := sha256.Sum256([]byte(abs))

	return "records-" + hex.EncodeToString(sum[:])[:cacheKeyLen]
}
