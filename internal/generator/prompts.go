package generator

import (
	"fmt"
	"strings"

	"github.com/luofeng-dev/jielong-engine/internal/domain"
)

const systemOpening = "你是一个精通中国古诗词的大师，你需要严格按照要求提供真实的诗词短句。"

const systemResponse = "你是一位才华横溢、富有毅力和创造力的中国古诗词接龙大师。" +
	"你的核心目标是运用你的智慧，让诗词接龙游戏尽可能地持续下去，" +
	"同时严格遵守接龙规则（约5-7字，真实诗词片段，首字正确，输出内容绝对纯净，只有诗句文字）。"

const openingPrompt = "请你作为一位精通中国古诗词的诗词大师，提供一个5到7个字的诗词短句作为诗词接龙的开头。" +
	"这个短语本身必须是某首真实存在的古诗词的一部分，且较为常见、脍炙人口。" +
	"请直接返回这个诗句本身，不要包含任何其他解释、标题或作者信息。"

// stopSequences cut the generator off before it appends explanations.
var stopSequences = []string{"\n", "（", "(", "【", "答：", "解："}

// refusalPhrases mark a response as an explicit refusal to chain.
var refusalPhrases = []string{"我接不上", "接不上", "无法接龙"}

func isRefusal(raw string) bool {
	for _, phrase := range refusalPhrases {
		if strings.Contains(raw, phrase) {
			return true
		}
	}
	return false
}

// responsePrompt asks for a verse chaining from previous, whose last
// character is lastChar.
func responsePrompt(previous, lastChar string) string {
	return fmt.Sprintf(
		"你的任务是进行诗词接龙。上一句的诗句是 '%s'，它的最后一个字是 '%s'。\n"+
			"请你接一个以 '%s' 开头（或与其同音字开头）的、大约5到7个字的纯粹的诗句。\n"+
			"这个诗句必须是某一句较为常见或有据可查的真实古诗词的片段。\n"+
			"重要规则：你的回答必须仅仅包含诗句本身，绝对不能包含任何其他文字，"+
			"比如诗名、作者、标点符号、括号、解释、序号或者任何形式的聊天内容！\n"+
			"现在，请接上一句尾字为'%s'的诗句：",
		previous, lastChar, lastChar, lastChar)
}

// Rejection feedback strings. Each rejection carries its specific reason
// forward into the next request; a generic "try again" converges far worse.
func feedbackTooShort() string {
	return "返回的诗句清理后内容太少。请确保返回的是约5-7个汉字的纯诗句部分。"
}

func feedbackLength(got int) string {
	return fmt.Sprintf("诗句长度 %d 不符合期望的4到8个字。请重新生成一个纯粹的5到7个汉字的诗句片段。", got)
}

func feedbackWrongFirstChar(got, want string) string {
	return fmt.Sprintf("首字 '%s' 不对哦！必须是以 '%s' 开头的纯诗句。再想想看。", got, want)
}

func feedbackNotInCorpus(line string) string {
	return fmt.Sprintf("这句 '%s' 很有趣，但在我的常见诗词库中未能确认。能否换一个更广为人知或明确有出处的诗句呢？", line)
}

func feedbackRefusal() string {
	return "再努力一下，大师！这对你来说肯定不难。请再试一次，只返回纯诗句。"
}

func feedbackTransport() string {
	return "上一次请求没有得到回应。请直接返回一句符合要求的纯诗句。"
}

// foldRejections appends accumulated corrective feedback to a base prompt.
// The rejections stay ordered data on the outcome; this is only their
// rendering for the next request.
func foldRejections(base string, rejections []domain.Rejection) string {
	if len(rejections) == 0 {
		return base
	}
	var b strings.Builder
	b.WriteString(base)
	for _, rej := range rejections {
		b.WriteString("\n（")
		b.WriteString(rej.Reason)
		b.WriteString("）")
	}
	return b.String()
}
