// Package corpus decides verse membership in the stored corpus and selects
// question material for fixed-corpus battles.
package corpus

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/store"
)

// Oracle answers the binary question "is this a real, attested verse".
// It builds an order-preserving fuzzy pattern so punctuation embedded in
// stored poem text never causes a false negative.
type Oracle struct {
	db    *sql.DB
	poems *store.PoemRepo
	log   *zap.Logger
}

// NewOracle creates an Oracle over the given database.
func NewOracle(db *sql.DB, log *zap.Logger) *Oracle {
	return &Oracle{db: db, poems: &store.PoemRepo{}, log: log}
}

// IsKnown reports whether the verse plausibly appears in some stored poem.
// An empty verse is never known and never queries the store. A store
// failure degrades to not-found; the session must bias toward rejection
// rather than hang.
func (o *Oracle) IsKnown(ctx context.Context, v domain.Verse) domain.CorpusMembership {
	if v.IsEmpty() {
		return domain.CorpusMembership{Found: false}
	}

	pattern := FuzzyPattern(v.Content)
	found, err := o.poems.ExistsByPattern(ctx, o.db, pattern)
	if err != nil {
		o.log.Warn("corpus lookup failed, treating as not found",
			zap.String("pattern", pattern), zap.Error(err))
		return domain.CorpusMembership{Found: false}
	}
	return domain.CorpusMembership{Found: found}
}

// FuzzyPattern builds the LIKE pattern %c1%c2%…%cn% requiring the verse's
// characters to appear in order with arbitrary text between them.
func FuzzyPattern(content string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, r := range content {
		b.WriteRune(r)
		b.WriteByte('%')
	}
	return b.String()
}
