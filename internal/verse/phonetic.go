package verse

import (
	"sync"

	"github.com/mozillazg/go-pinyin"
)

// PhoneticIndex maps single Han characters to their tone-free readings.
// Lookups are pure and cached process-wide with no invalidation;
// pronunciations are static linguistic facts.
type PhoneticIndex struct {
	args  pinyin.Args
	cache sync.Map // rune -> []string
}

// NewPhoneticIndex creates an index that returns heteronym readings in
// tone-free form.
func NewPhoneticIndex() *PhoneticIndex {
	args := pinyin.NewArgs()
	args.Style = pinyin.Normal
	args.Heteronym = true
	return &PhoneticIndex{args: args}
}

// Readings returns the set of tone-free readings for a single Han character.
// Empty input, multi-character input, and characters outside the Han block
// all yield an empty set.
func (p *PhoneticIndex) Readings(ch string) []string {
	runes := []rune(ch)
	if len(runes) != 1 || !isHan(runes[0]) {
		return nil
	}
	r := runes[0]

	if cached, ok := p.cache.Load(r); ok {
		return cached.([]string)
	}

	var readings []string
	if rows := pinyin.Pinyin(string(r), p.args); len(rows) > 0 {
		readings = dedupe(rows[0])
	}
	p.cache.Store(r, readings)
	return readings
}

// Equivalent reports whether two characters may chain: identical characters
// always chain, otherwise they chain when their reading sets intersect.
// A character with no known reading only chains by exact match.
func (p *PhoneticIndex) Equivalent(a, b string) bool {
	if a == b && a != "" {
		return true
	}
	ra := p.Readings(a)
	rb := p.Readings(b)
	if len(ra) == 0 || len(rb) == 0 {
		return false
	}
	set := make(map[string]bool, len(ra))
	for _, r := range ra {
		set[r] = true
	}
	for _, r := range rb {
		if set[r] {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
