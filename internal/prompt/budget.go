package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	approxCharsPerToken = 4
	clipChunkChars      = 400
	TruncationMarker    = "\n\n[... truncated ...]"
)

var (
	tokenEncoderOnce sync.Once
	tokenEncoder     *tiktoken.Tiktoken

	estimateTokensFunc = defaultEstimateTokens
)

// EstimateTokens counts tokens with the cl100k encoding, falling back to a
// character heuristic when the encoding cannot be loaded.
func EstimateTokens(text string) int {
	return estimateTokensFunc(text)
}

func defaultEstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if enc := getTokenEncoder(); enc != nil {
		if tokens := enc.Encode(text, nil, nil); len(tokens) > 0 {
			return len(tokens)
		}
	}
	return max(1, len(text)/approxCharsPerToken)
}

func getTokenEncoder() *tiktoken.Tiktoken {
	tokenEncoderOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel("gpt-4")
		if err != nil {
			enc, _ = tiktoken.GetEncoding("cl100k_base")
		}
		tokenEncoder = enc
	})
	return tokenEncoder
}

func newMarkdownSplitter() textsplitter.RecursiveCharacter {
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators([]string{
			"\n```",
			"\n# ", "\n## ", "\n### ",
			"\n- ", "\n* ",
			"\n",
			"",
		}),
		textsplitter.WithChunkSize(clipChunkChars),
		textsplitter.WithChunkOverlap(0),
	)
}

// Clip keeps the leading markdown blocks of text that fit in maxTokens and
// appends TruncationMarker when anything was dropped. maxTokens <= 0 disables clipping.
func Clip(text string, maxTokens int) string {
	// a token is never shorter than one byte
	if maxTokens <= 0 || len(text) <= maxTokens || EstimateTokens(text) <= maxTokens {
		return text
	}
	budget := maxTokens - EstimateTokens(TruncationMarker)
	if budget <= 0 {
		return strings.TrimSpace(TruncationMarker)
	}

	parts, err := newMarkdownSplitter().SplitText(text)
	if err != nil || len(parts) == 0 {
		parts = []string{text}
	}

	var kept []string
	used := 0
	for _, part := range parts {
		n := EstimateTokens(part)
		if used+n > budget {
			if len(kept) == 0 {
				kept = append(kept, cutRunes(part, budget))
			}
			break
		}
		kept = append(kept, part)
		used += n + 1
	}
	return strings.Join(kept, "\n") + TruncationMarker
}

// cutRunes shortens s to roughly tokens tokens using the character heuristic.
func cutRunes(s string, tokens int) string {
	r := []rune(s)
	limit := tokens * approxCharsPerToken
	if limit >= len(r) {
		return s
	}
	return string(r[:limit])
}
