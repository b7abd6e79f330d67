package generator

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/corpus"
	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/store"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

// fakeClient replays scripted responses and records every prompt it saw.
type fakeClient struct {
	responses []fakeResponse
	prompts   []string
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeClient) Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, user)
	if len(f.responses) == 0 {
		return "", errors.New("fake client exhausted")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.text, next.err
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestNegotiator(t *testing.T, client Client, extra ...domain.Poem) *Negotiator {
	t.Helper()
	db := newTestDB(t)
	repo := &store.PoemRepo{}
	for _, p := range append(append([]domain.Poem{}, corpus.StarterPoems...), extra...) {
		if _, err := repo.Create(context.Background(), db, p); err != nil {
			t.Fatalf("seed poem: %v", err)
		}
	}
	oracle := corpus.NewOracle(db, zap.NewNop())
	return NewNegotiator(client, verse.NewPhoneticIndex(), oracle, NegotiatorConfig{
		MaxAttempts: 4,
		CallTimeout: time.Second,
	}, zap.NewNop())
}

func TestNegotiator_OpeningLine_FirstAttempt(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "好的，请看：“海上生明月”"},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.OpeningLine(context.Background())
	if outcome.Accepted == nil {
		t.Fatalf("expected accepted verse, got failure %s", outcome.FailureReason)
	}
	if outcome.Accepted.Content != "海上生明月" {
		t.Errorf("Content = %q, want 海上生明月", outcome.Accepted.Content)
	}
	if outcome.AttemptsUsed != 1 {
		t.Errorf("AttemptsUsed = %d, want 1", outcome.AttemptsUsed)
	}
	if outcome.FailureReason != domain.FailureNone {
		t.Errorf("FailureReason = %q, want none", outcome.FailureReason)
	}
}

func TestNegotiator_AllTransportErrors(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.OpeningLine(context.Background())
	if outcome.Accepted != nil {
		t.Fatal("expected no accepted verse")
	}
	if outcome.AttemptsUsed != 4 {
		t.Errorf("AttemptsUsed = %d, want 4", outcome.AttemptsUsed)
	}
	if outcome.FailureReason != domain.FailureLLMUnavailable {
		t.Errorf("FailureReason = %q, want llm_unavailable", outcome.FailureReason)
	}
}

func TestNegotiator_AllRefusals(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "我接不上这句"},
		{text: "实在接不上"},
		{text: "我无法接龙"},
		{text: "接不上"},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.ResponseLine(context.Background(), domain.Verse{Content: "天涯共此时"})
	if outcome.Accepted != nil {
		t.Fatal("expected no accepted verse")
	}
	if outcome.FailureReason != domain.FailureLLMRefused {
		t.Errorf("FailureReason = %q, want llm_refused", outcome.FailureReason)
	}
}

func TestNegotiator_WrongFirstChar_FeedbackCarried(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "海上生明月"}, // wrong opening character
		{text: "时鸣春涧中"}, // chains from 时 but is not in the corpus
		{text: "此物最相思"}, // starts 此, wrong again
		{text: "时危见臣节"}, // not in corpus either
	}}
	n := newTestNegotiator(t, client)

	outcome := n.ResponseLine(context.Background(), domain.Verse{Content: "天涯共此时"})
	if outcome.Accepted != nil {
		t.Fatalf("unexpected acceptance: %q", outcome.Accepted.Content)
	}
	if len(client.prompts) < 2 {
		t.Fatalf("expected at least 2 prompts, got %d", len(client.prompts))
	}
	if !strings.Contains(client.prompts[1], "首字") {
		t.Errorf("second prompt should carry the wrong-first-char feedback, got %q", client.prompts[1])
	}
}

func TestNegotiator_NotInCorpus_ThenAccepted(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "月黑雁飞高高"}, // chains from 月 but is not in the corpus
		{text: "月落乌啼霜满天"},
	}}
	n := newTestNegotiator(t, client, domain.Poem{
		Title:      "枫桥夜泊",
		Author:     "张继",
		Content:    "月落乌啼霜满天，江枫渔火对愁眠。姑苏城外寒山寺，夜半钟声到客船。",
		Difficulty: 1,
	})

	outcome := n.ResponseLine(context.Background(), domain.Verse{Content: "海上生明月"})
	if outcome.Accepted == nil {
		t.Fatalf("expected acceptance on second attempt, got %s", outcome.FailureReason)
	}
	if outcome.Accepted.Content != "月落乌啼霜满天" {
		t.Errorf("Content = %q, want 月落乌啼霜满天", outcome.Accepted.Content)
	}
	if outcome.AttemptsUsed != 2 {
		t.Errorf("AttemptsUsed = %d, want 2", outcome.AttemptsUsed)
	}
	if !strings.Contains(client.prompts[1], "诗词库") {
		t.Errorf("second prompt should carry the corpus feedback, got %q", client.prompts[1])
	}
}

func TestNegotiator_Homophone_Accepted(t *testing.T) {
	// Question ends in 天; 田 is a homophone, and 田家少闲月 is seeded.
	client := &fakeClient{responses: []fakeResponse{
		{text: "田家少闲月"},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.ResponseLine(context.Background(), domain.Verse{Content: "疑是银河落九天"})
	if outcome.Accepted == nil {
		t.Fatalf("expected homophone-chained verse accepted, got %s", outcome.FailureReason)
	}
	if outcome.AttemptsUsed != 1 {
		t.Errorf("AttemptsUsed = %d, want 1", outcome.AttemptsUsed)
	}
}

func TestNegotiator_LengthRejected(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "天下"}, // two characters, below the minimum
		{text: "天涯共此时"},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.ResponseLine(context.Background(), domain.Verse{Content: "疑是银河落九天"})
	if outcome.Accepted == nil {
		t.Fatalf("expected acceptance on second attempt, got %s", outcome.FailureReason)
	}
	if outcome.AttemptsUsed != 2 {
		t.Errorf("AttemptsUsed = %d, want 2", outcome.AttemptsUsed)
	}
	if len(outcome.Rejections) != 1 {
		t.Fatalf("len(Rejections) = %d, want 1", len(outcome.Rejections))
	}
	if !strings.Contains(outcome.Rejections[0].Reason, "长度") {
		t.Errorf("rejection reason = %q, want a length complaint", outcome.Rejections[0].Reason)
	}
}

func TestNegotiator_NeverExceedsBudget(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{text: "不知所云"},
		{text: "不知所云"},
		{text: "不知所云"},
		{text: "不知所云"},
		{text: "海上生明月"}, // would be valid, but the budget is already spent
	}}
	n := newTestNegotiator(t, client)

	outcome := n.OpeningLine(context.Background())
	if outcome.Accepted != nil {
		t.Fatal("expected exhaustion before the fifth response")
	}
	if outcome.AttemptsUsed > 4 {
		t.Errorf("AttemptsUsed = %d, want <= 4", outcome.AttemptsUsed)
	}
	if outcome.FailureReason != domain.FailureExhaustedRetries {
		t.Errorf("FailureReason = %q, want exhausted_retries", outcome.FailureReason)
	}
	if len(client.prompts) != 4 {
		t.Errorf("generator called %d times, want 4", len(client.prompts))
	}
}

func TestNegotiator_MixedFailures_ExhaustedRetries(t *testing.T) {
	client := &fakeClient{responses: []fakeResponse{
		{err: errors.New("timeout")},
		{text: "我接不上"},
		{err: errors.New("timeout")},
		{text: "不知所云"},
	}}
	n := newTestNegotiator(t, client)

	outcome := n.OpeningLine(context.Background())
	if outcome.FailureReason != domain.FailureExhaustedRetries {
		t.Errorf("FailureReason = %q, want exhausted_retries for mixed failures", outcome.FailureReason)
	}
}
