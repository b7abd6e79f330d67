package corpus

import (
	"context"
	"database/sql"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/store"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

// defaultPickRetries bounds how many random poems are tried before the
// selector gives up; a poem with fewer than two usable lines is never a
// question source.
const defaultPickRetries = 3

// Selector picks question/answer line pairs out of stored poems for
// fixed-corpus battles.
type Selector struct {
	db         *sql.DB
	poems      *store.PoemRepo
	log        *zap.Logger
	Difficulty int // 0 means any
	Retries    int
}

// NewSelector creates a Selector over the given database.
func NewSelector(db *sql.DB, log *zap.Logger) *Selector {
	return &Selector{db: db, poems: &store.PoemRepo{}, log: log, Retries: defaultPickRetries}
}

// PickLinePair selects a random poem with at least two usable lines and
// returns a random adjacent (question, answer) pair from it. Poem selection
// is retried a bounded number of times; ErrNoPoemAvailable when no poem
// qualifies.
func (s *Selector) PickLinePair(ctx context.Context) (domain.LinePair, error) {
	retries := s.Retries
	if retries <= 0 {
		retries = defaultPickRetries
	}

	for attempt := 0; attempt <= retries; attempt++ {
		poem, err := s.poems.Random(ctx, s.db, s.Difficulty)
		if err != nil {
			return domain.LinePair{}, err
		}

		lines := SplitLines(poem.Content)
		if len(lines) < 2 {
			s.log.Debug("poem too short for a line pair",
				zap.Int64("poem_id", poem.ID), zap.Int("lines", len(lines)))
			continue
		}

		i := rand.Intn(len(lines) - 1)
		return domain.LinePair{Question: lines[i], Answer: lines[i+1]}, nil
	}
	return domain.LinePair{}, domain.ErrNoPoemAvailable
}

// SplitLines breaks poem content on CJK end-of-line punctuation and
// normalizes each piece. Pieces with no usable content are dropped.
func SplitLines(content string) []string {
	pieces := strings.FieldsFunc(content, func(r rune) bool {
		switch r {
		case '，', '。', '？', '！', '；', '、', '\n':
			return true
		}
		return false
	})

	var lines []string
	for _, piece := range pieces {
		if cleaned := verse.Normalize(piece); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}
