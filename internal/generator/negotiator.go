package generator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/luofeng-dev/jielong-engine/internal/corpus"
	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

// NegotiatorConfig bounds a negotiation. The same policy applies to every
// call site; there are no per-site attempt counts.
type NegotiatorConfig struct {
	MaxAttempts int           // total attempts, default 4
	CallTimeout time.Duration // per external call, counts as one attempt
	MinLen      int           // content characters, default 4
	MaxLen      int           // content characters, default 8
	MaxTokens   int
	Temperature float32
}

func (c NegotiatorConfig) withDefaults() NegotiatorConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.MinLen <= 0 {
		c.MinLen = 4
	}
	if c.MaxLen <= 0 {
		c.MaxLen = 8
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 50
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.75
	}
	return c
}

// Negotiator drives the bounded request/feedback loop against the external
// generator until it produces a verse that cleans up, fits the length
// bounds, chains phonetically, and is a corpus member. All failure paths
// resolve to a NegotiationOutcome; no transport error escapes.
type Negotiator struct {
	client   Client
	phonetic *verse.PhoneticIndex
	oracle   *corpus.Oracle
	log      *zap.Logger
	cfg      NegotiatorConfig
}

// NewNegotiator creates a Negotiator. The generator client is injected
// explicitly; there is no shared process-wide client.
func NewNegotiator(client Client, phonetic *verse.PhoneticIndex, oracle *corpus.Oracle, cfg NegotiatorConfig, log *zap.Logger) *Negotiator {
	return &Negotiator{
		client:   client,
		phonetic: phonetic,
		oracle:   oracle,
		log:      log,
		cfg:      cfg.withDefaults(),
	}
}

// OpeningLine negotiates a verse to open a battle. No chain constraint
// applies since there is no predecessor.
func (n *Negotiator) OpeningLine(ctx context.Context) domain.NegotiationOutcome {
	return n.negotiate(ctx, openingPrompt, systemOpening, "")
}

// ResponseLine negotiates a verse that chains from previous.
func (n *Negotiator) ResponseLine(ctx context.Context, previous domain.Verse) domain.NegotiationOutcome {
	runes := []rune(previous.Content)
	if len(runes) == 0 {
		// Battle invariants guarantee a non-empty question; reaching here is
		// a caller bug, not a generator failure.
		n.log.Error("response negotiation with empty previous verse")
		return domain.NegotiationOutcome{FailureReason: domain.FailureExhaustedRetries}
	}
	lastChar := string(runes[len(runes)-1])
	return n.negotiate(ctx, responsePrompt(previous.Content, lastChar), systemResponse, lastChar)
}

// negotiate runs the attempt loop. requiredChar == "" skips the chain check
// (opening-verse form).
func (n *Negotiator) negotiate(ctx context.Context, basePrompt, system, requiredChar string) domain.NegotiationOutcome {
	var (
		rejections []domain.Rejection
		transport  int
		refusals   int
	)

	for attempt := 1; attempt <= n.cfg.MaxAttempts; attempt++ {
		prompt := foldRejections(basePrompt, rejections)

		callCtx, cancel := context.WithTimeout(ctx, n.cfg.CallTimeout)
		raw, err := n.client.Generate(callCtx, system, prompt, GenerateOptions{
			MaxTokens:   n.cfg.MaxTokens,
			Temperature: n.cfg.Temperature,
			Stop:        stopSequences,
		})
		cancel()

		if err != nil {
			transport++
			n.log.Warn("generator call failed",
				zap.Int("attempt", attempt), zap.Error(err))
			rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackTransport()})
			continue
		}

		if isRefusal(raw) {
			refusals++
			n.log.Info("generator refused to chain",
				zap.Int("attempt", attempt), zap.String("raw", raw))
			rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackRefusal()})
			continue
		}

		candidate, ok := verse.NewVerse(raw)
		if !ok {
			rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackTooShort()})
			continue
		}

		length := len([]rune(candidate.Content))
		if length < n.cfg.MinLen || length > n.cfg.MaxLen {
			rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackLength(length)})
			continue
		}

		if requiredChar != "" {
			first := string([]rune(candidate.Content)[0])
			if !n.phonetic.Equivalent(requiredChar, first) {
				rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackWrongFirstChar(first, requiredChar)})
				continue
			}
		}

		if !n.oracle.IsKnown(ctx, candidate).Found {
			rejections = append(rejections, domain.Rejection{Attempt: attempt, Reason: feedbackNotInCorpus(candidate.Content)})
			continue
		}

		n.log.Info("negotiation accepted a verse",
			zap.Int("attempts_used", attempt), zap.String("verse", candidate.Content))
		return domain.NegotiationOutcome{
			Accepted:      &candidate,
			AttemptsUsed:  attempt,
			FailureReason: domain.FailureNone,
			Rejections:    rejections,
		}
	}

	reason := domain.FailureExhaustedRetries
	switch n.cfg.MaxAttempts {
	case transport:
		reason = domain.FailureLLMUnavailable
	case refusals:
		reason = domain.FailureLLMRefused
	}

	n.log.Warn("negotiation exhausted its attempt budget",
		zap.Int("attempts", n.cfg.MaxAttempts), zap.String("failure", string(reason)))
	return domain.NegotiationOutcome{
		AttemptsUsed:  n.cfg.MaxAttempts,
		FailureReason: reason,
		Rejections:    rejections,
	}
}
