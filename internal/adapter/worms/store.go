package worms

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS taxon_matches (
	name               TEXT PRIMARY KEY,
	matched_name       TEXT NOT NULL,
	accepted_name      TEXT NOT NULL,
	aphia_id           INTEGER NOT NULL,
	kingdom            TEXT NOT NULL DEFAULT '',
	phylum             TEXT NOT NULL DEFAULT '',
	class              TEXT NOT NULL DEFAULT '',
	order_name         TEXT NOT NULL DEFAULT '',
	family             TEXT NOT NULL DEFAULT '',
	genus              TEXT NOT NULL DEFAULT '',
	authorship         TEXT NOT NULL DEFAULT '',
	rank               TEXT NOT NULL DEFAULT '',
	resolved_at        TIMESTAMP NOT NULL
);`

// Store persists resolved taxon matches in a local sqlite database so
// repeated runs over the same dataset skip the remote authority entirely.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed initializes) the cache database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open resolver cache %s: %w", path, err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init resolver cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the stored matches for the given names; absent names are
// simply missing from the map.
func (s *Store) Get(ctx context.Context, names []string) (map[string]domain.TaxonMatch, error) {
	stmt, err := s.db.PrepareContext(ctx, `
		SELECT matched_name, accepted_name, aphia_id, kingdom, phylum, class,
		       order_name, family, genus, authorship, rank
		FROM taxon_matches WHERE name = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare cache lookup: %w", err)
	}
	defer stmt.Close()

	matches := make(map[string]domain.TaxonMatch, len(names))
	for _, name := range names {
		var m domain.TaxonMatch
		err := stmt.QueryRowContext(ctx, name).Scan(
			&m.ScientificName, &m.AcceptedName, &m.AphiaID,
			&m.Kingdom, &m.Phylum, &m.Class, &m.Order, &m.Family, &m.Genus,
			&m.Authorship, &m.Rank,
		)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cache lookup %q: %w", name, err)
		}
		matches[name] = m
	}
	return matches, nil
}

// Put upserts matches keyed by the input name they resolved.
func (s *Store) Put(ctx context.Context, matches map[string]domain.TaxonMatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO taxon_matches
			(name, matched_name, accepted_name, aphia_id, kingdom, phylum, class,
			 order_name, family, genus, authorship, rank, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			matched_name = excluded.matched_name,
			accepted_name = excluded.accepted_name,
			aphia_id = excluded.aphia_id,
			kingdom = excluded.kingdom,
			phylum = excluded.phylum,
			class = excluded.class,
			order_name = excluded.order_name,
			family = excluded.family,
			genus = excluded.genus,
			authorship = excluded.authorship,
			rank = excluded.rank,
			resolved_at = excluded.resolved_at`)
	if err != nil {
		return fmt.Errorf("prepare cache write: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for name, m := range matches {
		if _, err := stmt.ExecContext(ctx, name, m.ScientificName, m.AcceptedName, m.AphiaID,
			m.Kingdom, m.Phylum, m.Class, m.Order, m.Family, m.Genus,
			m.Authorship, m.Rank, now); err != nil {
			return fmt.Errorf("cache write %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// StoredResolver layers the sqlite cache under a resolver: hits come from
// disk, misses go to the inner resolver and are written back. Cache write
// failures are logged, not fatal; the resolved matches are still returned.
type StoredResolver struct {
	inner   domain.NameResolver
	store   *Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStoredResolver creates the persistent cache decorator.
func NewStoredResolver(inner domain.NameResolver, store *Store, logger *slog.Logger, metrics *observability.Metrics) *StoredResolver {
	return &StoredResolver{inner: inner, store: store, logger: logger, metrics: metrics}
}

func (r *StoredResolver) Resolve(ctx context.Context, names []string) (map[string]domain.TaxonMatch, error) {
	cached, err := r.store.Get(ctx, names)
	if err != nil {
		return nil, err
	}

	var misses []string
	for _, name := range names {
		if _, ok := cached[name]; ok {
			r.metrics.ResolverCache.WithLabelValues("store", "hit").Inc()
			continue
		}
		r.metrics.ResolverCache.WithLabelValues("store", "miss").Inc()
		misses = append(misses, name)
	}

	if len(misses) == 0 {
		return cached, nil
	}

	resolved, err := r.inner.Resolve(ctx, misses)
	if err != nil {
		return nil, err
	}

	if len(resolved) > 0 {
		if err := r.store.Put(ctx, resolved); err != nil {
			r.logger.Warn("resolver cache write failed", "error", err)
		}
	}

	for name, m := range resolved {
		cached[name] = m
	}
	return cached, nil
}
