// Package battle owns per-session round progression: issuing questions,
// judging submitted answers, scoring, and driving sessions to a terminal
// status.
package battle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/corpus"
	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/generator"
	"github.com/luofeng-dev/jielong-engine/internal/store"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

// validTransitions defines the legal status transitions.
// Terminal statuses have no outgoing edges.
var validTransitions = map[domain.BattleStatus]map[domain.BattleStatus]bool{
	domain.StatusPending: {domain.StatusActive: true},
	domain.StatusActive: {
		domain.StatusWon:     true,
		domain.StatusLost:    true,
		domain.StatusAborted: true,
	},
}

// IsValidTransition checks if a status transition is legal.
func IsValidTransition(from, to domain.BattleStatus) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Scoring holds the per-round point rules. Scores never go below zero;
// penalties clamp rather than producing a negative balance.
type Scoring struct {
	PointsCorrect   int
	PointsWrong     int
	WinOnExhaustion bool
}

// DefaultScoring mirrors the product rules: +10 correct, -5 wrong, and the
// opponent running out of material counts as a player win.
func DefaultScoring() Scoring {
	return Scoring{PointsCorrect: 10, PointsWrong: 5, WinOnExhaustion: true}
}

// SubmitResult is what one submitted answer produces: the judgment, the
// updated session, and the appended round record.
type SubmitResult struct {
	Judgment domain.ChainJudgment  `json:"judgment"`
	Session  *domain.BattleSession `json:"session"`
	Round    domain.RoundRecord    `json:"round"`
}

// Engine is the battle state machine.
type Engine struct {
	db         *sql.DB
	battles    *store.BattleRepo
	rounds     *store.RoundRepo
	selector   *corpus.Selector
	oracle     *corpus.Oracle
	chain      *verse.ChainValidator
	negotiator *generator.Negotiator
	scoring    Scoring
	log        *zap.Logger
	locks      sessionLocks
}

// NewEngine creates a battle engine with all dependencies.
func NewEngine(
	db *sql.DB,
	selector *corpus.Selector,
	oracle *corpus.Oracle,
	chain *verse.ChainValidator,
	negotiator *generator.Negotiator,
	scoring Scoring,
	log *zap.Logger,
) *Engine {
	return &Engine{
		db:         db,
		battles:    &store.BattleRepo{},
		rounds:     &store.RoundRepo{},
		selector:   selector,
		oracle:     oracle,
		chain:      chain,
		negotiator: negotiator,
		scoring:    scoring,
		log:        log,
	}
}

// Start creates a battle session for the player, seeds round 1 with a
// question (and, in fixed-corpus mode, its expected answer), and moves the
// session from pending to active.
func (e *Engine) Start(ctx context.Context, playerID string, mode domain.Mode) (*domain.BattleSession, error) {
	if mode != domain.ModeFixedCorpus && mode != domain.ModeGenerative {
		return nil, domain.ErrInvalidMode
	}

	session := domain.BattleSession{
		BattleID:     uuid.NewString(),
		PlayerID:     playerID,
		Mode:         mode,
		Status:       domain.StatusPending,
		CurrentRound: 1,
		StateVersion: 1,
	}

	switch mode {
	case domain.ModeFixedCorpus:
		pair, err := e.selector.PickLinePair(ctx)
		if err != nil {
			return nil, err
		}
		session.CurrentQuestion = pair.Question
		session.ExpectedAnswer = pair.Answer
	case domain.ModeGenerative:
		outcome := e.negotiator.OpeningLine(ctx)
		if outcome.Accepted == nil {
			if outcome.FailureReason == domain.FailureLLMUnavailable {
				return nil, domain.ErrGeneratorUnavailable
			}
			return nil, domain.ErrGeneratorGaveUp
		}
		session.CurrentQuestion = outcome.Accepted.Content
	}

	if !IsValidTransition(session.Status, domain.StatusActive) {
		return nil, domain.ErrInvalidTransition
	}
	session.Status = domain.StatusActive
	session.UpdatedAtUnix = time.Now().Unix()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := e.battles.CreateTx(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("create battle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit battle: %w", err)
	}

	e.log.Info("battle started",
		zap.String("battle_id", session.BattleID),
		zap.String("player_id", playerID),
		zap.String("mode", string(mode)))
	return &session, nil
}

// Submit consumes one answer for an active battle. Submissions for the same
// session are serialized; concurrent submissions for different sessions
// proceed independently.
func (e *Engine) Submit(ctx context.Context, battleID, playerID, rawAnswer string) (*SubmitResult, error) {
	unlock := e.locks.acquire(battleID)
	defer unlock()

	session, err := e.battles.GetByID(ctx, e.db, battleID)
	if err != nil {
		return nil, err
	}
	if playerID != "" && session.PlayerID != playerID {
		return nil, domain.ErrNotSessionOwner
	}
	if session.Status.IsTerminal() {
		return nil, domain.ErrBattleTerminal
	}
	if session.Status != domain.StatusActive {
		return nil, domain.ErrBattleNotActive
	}

	answer, ok := verse.NewVerse(rawAnswer)
	if !ok {
		return nil, domain.ErrEmptyAnswer
	}

	var outcome roundOutcome
	switch session.Mode {
	case domain.ModeFixedCorpus:
		outcome, err = e.judgeFixed(ctx, session, answer)
	case domain.ModeGenerative:
		outcome, err = e.judgeGenerative(ctx, session, answer)
	default:
		return nil, domain.ErrInvalidMode
	}
	if err != nil {
		return nil, err
	}

	return e.applyRound(ctx, session, answer, outcome)
}

// Abort moves an active battle to aborted with no scoring effect. A
// negotiation still in flight for this session will lose the optimistic
// lock when it lands and its result is discarded.
func (e *Engine) Abort(ctx context.Context, battleID, playerID string) (*domain.BattleSession, error) {
	unlock := e.locks.acquire(battleID)
	defer unlock()

	session, err := e.battles.GetByID(ctx, e.db, battleID)
	if err != nil {
		return nil, err
	}
	if playerID != "" && session.PlayerID != playerID {
		return nil, domain.ErrNotSessionOwner
	}
	if session.Status.IsTerminal() {
		return nil, domain.ErrBattleTerminal
	}
	if !IsValidTransition(session.Status, domain.StatusAborted) {
		return nil, domain.ErrInvalidTransition
	}

	updated := *session
	updated.Status = domain.StatusAborted
	updated.CurrentQuestion = ""
	updated.ExpectedAnswer = ""
	updated.UpdatedAtUnix = time.Now().Unix()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := e.battles.UpdateStateTx(ctx, tx, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit abort: %w", err)
	}

	updated.StateVersion++
	e.log.Info("battle aborted", zap.String("battle_id", battleID))
	return &updated, nil
}

// Get returns the current session state.
func (e *Engine) Get(ctx context.Context, battleID string) (*domain.BattleSession, error) {
	return e.battles.GetByID(ctx, e.db, battleID)
}

// Rounds returns the battle's append-only round history.
func (e *Engine) Rounds(ctx context.Context, battleID string) ([]domain.RoundRecord, error) {
	if _, err := e.battles.GetByID(ctx, e.db, battleID); err != nil {
		return nil, err
	}
	return e.rounds.ListByBattle(ctx, e.db, battleID)
}

// Rankings returns aggregate scores per player over finished battles.
func (e *Engine) Rankings(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	return e.battles.Rankings(ctx, e.db, limit)
}

// roundOutcome is the judged result of one answer before it is applied to
// the session.
type roundOutcome struct {
	judgment     domain.ChainJudgment
	correct      bool
	judgeNote    string
	nextQuestion string
	nextAnswer   string
	nextStatus   domain.BattleStatus
}

// judgeFixed compares the answer to the stored expected line. Fixed-corpus
// mode uses plain equality: the expected answer is the literal next line of
// a known poem, so phonetic chaining does not apply.
func (e *Engine) judgeFixed(ctx context.Context, s *domain.BattleSession, answer domain.Verse) (roundOutcome, error) {
	if answer.Content != s.ExpectedAnswer {
		return roundOutcome{
			judgment:   domain.ChainJudgment{Matches: false, Reason: domain.ChainMismatch},
			correct:    false,
			judgeNote:  fmt.Sprintf("回答错误，正确答案是“%s”", s.ExpectedAnswer),
			nextStatus: domain.StatusLost,
		}, nil
	}

	out := roundOutcome{
		judgment:   domain.ChainJudgment{Matches: true, Reason: domain.ChainIdentical},
		correct:    true,
		judgeNote:  "回答正确",
		nextStatus: domain.StatusActive,
	}

	pair, err := e.selector.PickLinePair(ctx)
	if err == domain.ErrNoPoemAvailable {
		// Corpus exhausted: the player outlasted the question source.
		out.nextStatus = e.exhaustionStatus()
		out.judgeNote = "回答正确，题库已尽，对战结束"
		return out, nil
	}
	if err != nil {
		return roundOutcome{}, err
	}
	out.nextQuestion = pair.Question
	out.nextAnswer = pair.Answer
	return out, nil
}

// judgeGenerative applies the chain rule and the corpus gate, then asks the
// negotiator for the next prompt. Judgment is entirely mechanical; there is
// no separate AI judge.
func (e *Engine) judgeGenerative(ctx context.Context, s *domain.BattleSession, answer domain.Verse) (roundOutcome, error) {
	previous := domain.Verse{Raw: s.CurrentQuestion, Content: s.CurrentQuestion}
	judgment, err := e.chain.Validate(previous, answer)
	if err != nil {
		return roundOutcome{}, err
	}

	if !judgment.Matches {
		return roundOutcome{
			judgment:   judgment,
			correct:    false,
			judgeNote:  "接龙失败：首字与上一句尾字不匹配",
			nextStatus: domain.StatusLost,
		}, nil
	}

	if !e.oracle.IsKnown(ctx, answer).Found {
		return roundOutcome{
			judgment:   domain.ChainJudgment{Matches: false, Reason: domain.ChainMismatch},
			correct:    false,
			judgeNote:  "接龙失败：这句诗未能在诗词库中确认",
			nextStatus: domain.StatusLost,
		}, nil
	}

	note := "接龙成功（首字相同）"
	if judgment.Reason == domain.ChainHomophone {
		note = "接龙成功（谐音相接）"
	}
	out := roundOutcome{
		judgment:   judgment,
		correct:    true,
		judgeNote:  note,
		nextStatus: domain.StatusActive,
	}

	negotiated := e.negotiator.ResponseLine(ctx, answer)
	if negotiated.Accepted == nil {
		// The generator's inability to continue counts for the player.
		out.nextStatus = e.exhaustionStatus()
		out.judgeNote = note + "；对方认输"
		return out, nil
	}
	out.nextQuestion = negotiated.Accepted.Content
	return out, nil
}

// applyRound persists one judged round in a single transaction: the
// append-only round record plus the optimistically locked session update.
func (e *Engine) applyRound(ctx context.Context, session *domain.BattleSession, answer domain.Verse, out roundOutcome) (*SubmitResult, error) {
	now := time.Now().Unix()

	delta := e.scoring.PointsCorrect
	if !out.correct {
		delta = -e.scoring.PointsWrong
	}

	updated := *session
	updated.Score += delta
	if updated.Score < 0 {
		updated.Score = 0
	}
	updated.RoundsCompleted++
	updated.Status = out.nextStatus
	updated.UpdatedAtUnix = now

	record := domain.RoundRecord{
		BattleID:    session.BattleID,
		RoundNum:    session.CurrentRound,
		Question:    session.CurrentQuestion,
		Answer:      answer.Content,
		Correct:     out.correct,
		PointsDelta: delta,
		JudgeNote:   out.judgeNote,
		CreatedAt:   now,
	}

	if out.nextStatus == domain.StatusActive {
		updated.CurrentRound++
		updated.CurrentQuestion = out.nextQuestion
		updated.ExpectedAnswer = out.nextAnswer
	} else {
		if !IsValidTransition(session.Status, out.nextStatus) {
			return nil, domain.ErrInvalidTransition
		}
		updated.CurrentQuestion = ""
		updated.ExpectedAnswer = ""
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := e.rounds.AppendTx(ctx, tx, record); err != nil {
		return nil, err
	}
	if err := e.battles.UpdateStateTx(ctx, tx, updated); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit round: %w", err)
	}

	updated.StateVersion++
	e.log.Info("round judged",
		zap.String("battle_id", session.BattleID),
		zap.Int("round", record.RoundNum),
		zap.Bool("correct", out.correct),
		zap.String("status", string(updated.Status)))

	return &SubmitResult{
		Judgment: out.judgment,
		Session:  &updated,
		Round:    record,
	}, nil
}

// exhaustionStatus maps "the question source ran out" to a terminal status.
// Winning on exhaustion is product policy, kept configurable.
func (e *Engine) exhaustionStatus() domain.BattleStatus {
	if e.scoring.WinOnExhaustion {
		return domain.StatusWon
	}
	return domain.StatusLost
}
