// Package extract reads commit author records out of a git repository.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Sumatoshi-tech/devdedup/internal/identity"
	"github.com/Sumatoshi-tech/devdedup/pkg/gitlib"
)

// errStop terminates commit iteration early once the commit limit is reached.
var errStop = errors.New("stop iteration")

// Record is one commit authorship observation.
type Record struct {
	Hash  string    `json:"hash"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// Stats counts the commits seen during extraction.
type Stats struct {
	Commits int `json:"commits"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// Options configures extraction.
type Options struct {
	// MaxCommits caps the number of commits walked. Zero means unlimited.
	MaxCommits int

	// FirstParent follows only the first parent of merges.
	FirstParent bool

	// Since drops commits authored before this time.
	Since *time.Time

	// Logger is the structured logger for extraction progress.
	// When nil, a discard logger is used.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FromRepository walks the repository history from HEAD and returns one
// record per commit. Commits whose author carries neither a name nor an
// email are counted as invalid and skipped.
func FromRepository(ctx context.Context, path string, opts Options) ([]Record, Stats, error) {
	repo, err := gitlib.OpenRepository(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer repo.Free()

	iter, err := repo.Log(&gitlib.LogOptions{
		Since:       opts.Since,
		FirstParent: opts.FirstParent,
	})
	if err != nil {
		return nil, Stats{}, err
	}
	defer iter.Close()

	var (
		records []Record
		stats   Stats
	)

	err = iter.ForEach(func(commit *gitlib.Commit) error {
		if ctx.Err() != nil {
			return fmt.Errorf("walk commits: %w", ctx.Err())
		}

		if opts.MaxCommits > 0 && stats.Commits >= opts.MaxCommits {
			return errStop
		}

		stats.Commits++

		author := commit.Author()
		if author.Name == "" && author.Email == "" {
			stats.Invalid++

			return nil
		}

		stats.Valid++

		records = append(records, Record{
			Hash:  commit.Hash().String(),
			Name:  author.Name,
			Email: author.Email,
			When:  author.When,
		})

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, Stats{}, err
	}

	opts.logger().InfoContext(ctx, "extraction complete",
		slog.String("repo", path),
		slog.Int("commits", stats.Commits),
		slog.Int("valid", stats.Valid),
		slog.Int("invalid", stats.Invalid),
	)

	return records, stats, nil
}

// Raws converts records to raw identities for deduplication.
func Raws(records []Record) []identity.Raw {
	raws := make([]identity.Raw, 0, len(records))
	for _, rec := range records {
		raws = append(raws, identity.Raw{Name: rec.Name, Email: rec.Email})
	}

	return raws
}
