// Package verse implements text normalization, phonetic lookup, and the
// chaining rule for verse-chaining battles.
package verse

import (
	"regexp"
	"strings"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

var (
	bracketedAside = regexp.MustCompile(`[（(\[【].*?[）)\]】]`)
	bracedAside    = regexp.MustCompile(`[{｛].*?[}｝]`)
)

// conversationalPrefixes are phrases a generator tends to prepend to a verse.
// Matched as prefixes after whitespace trimming.
var conversationalPrefixes = []string{
	"好的，请看：", "好的，这句是：", "请看：", "这句是：",
	"我接的是：", "我的是：", "答案是：", "当然，这是下一句：",
	"没问题，请看下句：", "我来了：", "这是我的回答：", "诗句是：",
}

// conversationalSuffixes are trailing chat phrases to strip.
var conversationalSuffixes = []string{
	"你看如何？", "怎么样？", "希望你喜欢。", "请指正。",
}

const quoteChars = "\"'`“”‘’「」『』"

// singleCharWhitelist lists the native digit-words one through ten, the only
// single characters accepted as a whole verse. Any other single character
// left after cleaning is noise.
var singleCharWhitelist = map[string]bool{
	"一": true, "二": true, "三": true, "四": true, "五": true,
	"六": true, "七": true, "八": true, "九": true, "十": true,
}

// Normalize strips asides, conversational boilerplate, and quotes from raw
// text, then keeps only Han characters. It returns "" when no usable content
// remains. Pure and idempotent; it never fails.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.TrimSpace(raw)
	s = bracketedAside.ReplaceAllString(s, "")
	s = bracedAside.ReplaceAllString(s, "")

	for _, prefix := range conversationalPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	for _, suffix := range conversationalSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}

	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(quoteChars, r) {
			continue
		}
		if isHan(r) {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if len([]rune(cleaned)) <= 1 && !singleCharWhitelist[cleaned] {
		return ""
	}
	return cleaned
}

// NewVerse normalizes raw text into a Verse. The second return value is
// false when the text has no usable content.
func NewVerse(raw string) (domain.Verse, bool) {
	content := Normalize(raw)
	if content == "" {
		return domain.Verse{}, false
	}
	return domain.Verse{Raw: raw, Content: content}, true
}

// isHan reports whether r is in the CJK Unified Ideographs block.
func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}
