// Package domain defines the core types for the verse-chaining battle engine.
package domain

// Mode selects where questions and counter-verses come from.
type Mode string

const (
	ModeFixedCorpus Mode = "fixed_corpus"
	ModeGenerative  Mode = "generative"
)

// BattleStatus represents the lifecycle status of a battle session.
type BattleStatus string

const (
	StatusPending BattleStatus = "pending"
	StatusActive  BattleStatus = "active"
	StatusWon     BattleStatus = "won"
	StatusLost    BattleStatus = "lost"
	StatusAborted BattleStatus = "aborted"
)

// IsTerminal reports whether a status accepts no further transitions.
func (s BattleStatus) IsTerminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusAborted
}

// Verse is a cleaned line of verse paired with the raw text it came from.
// Content holds only Han characters; it is never mutated after creation.
type Verse struct {
	Raw     string
	Content string
}

// IsEmpty reports whether the verse carries no usable content.
func (v Verse) IsEmpty() bool {
	return v.Content == ""
}

// ChainReason explains a chain judgment.
type ChainReason string

const (
	ChainIdentical ChainReason = "identical"
	ChainHomophone ChainReason = "homophone"
	ChainMismatch  ChainReason = "mismatch"
)

// ChainJudgment is the result of validating that one verse may follow another.
type ChainJudgment struct {
	Matches bool        `json:"matches"`
	Reason  ChainReason `json:"reason"`
}

// CorpusMembership is the result of a fuzzy corpus lookup. Membership is
// binary: downstream logic only needs a gate, never a ranking.
type CorpusMembership struct {
	Found bool `json:"found"`
}

// FailureReason classifies how a negotiation with the generator ended.
type FailureReason string

const (
	FailureNone             FailureReason = "none"
	FailureLLMUnavailable   FailureReason = "llm_unavailable"
	FailureLLMRefused       FailureReason = "llm_refused"
	FailureExhaustedRetries FailureReason = "exhausted_retries"
)

// Rejection records one rejected negotiation attempt and why. The ordered
// list of rejections is folded into the next request's prompt.
type Rejection struct {
	Attempt int
	Reason  string
}

// NegotiationOutcome is the result of the bounded retry loop against the
// generator. Every failure path resolves to one of these values; the
// negotiator never propagates a raw transport error.
type NegotiationOutcome struct {
	Accepted      *Verse
	AttemptsUsed  int
	FailureReason FailureReason
	Rejections    []Rejection
}

// RoundRecord captures one completed round of a battle. Records are
// append-only and never mutated retroactively.
type RoundRecord struct {
	ID          int64  `json:"id"`
	BattleID    string `json:"battle_id"`
	RoundNum    int    `json:"round_num"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Correct     bool   `json:"correct"`
	PointsDelta int    `json:"points_delta"`
	JudgeNote   string `json:"judge_note"`
	CreatedAt   int64  `json:"created_at"`
}

// BattleSession is the aggregate root of the engine. While Status is active,
// CurrentQuestion is non-empty, and in fixed-corpus mode so is ExpectedAnswer.
type BattleSession struct {
	BattleID        string       `json:"battle_id"`
	PlayerID        string       `json:"player_id"`
	Mode            Mode         `json:"mode"`
	Status          BattleStatus `json:"status"`
	Score           int          `json:"score"`
	RoundsCompleted int          `json:"rounds_completed"`
	CurrentRound    int          `json:"current_round"`
	CurrentQuestion string       `json:"current_question"`
	ExpectedAnswer  string       `json:"expected_answer,omitempty"`
	StateVersion    int64        `json:"state_version"`
	UpdatedAtUnix   int64        `json:"updated_at_unix"`
}

// Poem is one stored poem in the corpus. Content keeps its original
// punctuation; fuzzy lookups tolerate it.
type Poem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	Difficulty int    `json:"difficulty"`
}

// LinePair is a question line and its immediate successor from one poem,
// used as the question/answer pair in fixed-corpus mode.
type LinePair struct {
	Question string
	Answer   string
}

// RankingEntry is one row of the score leaderboard.
type RankingEntry struct {
	PlayerID   string `json:"player_id"`
	TotalScore int    `json:"total_score"`
	Battles    int    `json:"battles"`
}
