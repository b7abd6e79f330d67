package verse

import (
	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

// ChainValidator decides whether one verse may legally follow another.
// There is exactly one chaining rule in the system, shared by both battle
// modes: the candidate's first character must equal, or share a reading
// with, the previous verse's last character.
type ChainValidator struct {
	phonetic *PhoneticIndex
}

// NewChainValidator creates a validator over the given phonetic index.
func NewChainValidator(phonetic *PhoneticIndex) *ChainValidator {
	return &ChainValidator{phonetic: phonetic}
}

// Validate judges whether candidate may follow previous. An empty previous
// verse violates the battle session invariants and is reported as
// ErrEmptyPrevious rather than a mismatch, so callers do not mistake a bug
// for a player loss. An empty candidate is ErrEmptyAnswer.
func (c *ChainValidator) Validate(previous, candidate domain.Verse) (domain.ChainJudgment, error) {
	if previous.IsEmpty() {
		return domain.ChainJudgment{}, domain.ErrEmptyPrevious
	}
	if candidate.IsEmpty() {
		return domain.ChainJudgment{}, domain.ErrEmptyAnswer
	}

	prevRunes := []rune(previous.Content)
	candRunes := []rune(candidate.Content)
	last := string(prevRunes[len(prevRunes)-1])
	first := string(candRunes[0])

	if last == first {
		return domain.ChainJudgment{Matches: true, Reason: domain.ChainIdentical}, nil
	}
	if c.phonetic.Equivalent(last, first) {
		return domain.ChainJudgment{Matches: true, Reason: domain.ChainHomophone}, nil
	}
	return domain.ChainJudgment{Matches: false, Reason: domain.ChainMismatch}, nil
}
