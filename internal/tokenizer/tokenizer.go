package tokenizer

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/domdrift/pkg/types"
)

// markupPattern matches comments first so that '>' inside a comment body does
// not end the match, then any '<...>' run without a nested '<'.
var markupPattern = regexp.MustCompile(`(?s)<!--.*?-->|<[^<>]+>`)

// Tokenizer converts HTML text into normalized tokens. It holds no state and is
// safe for concurrent use.
type Tokenizer struct{}

// New creates a new Tokenizer instance
func New() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits an HTML document into tokens in document order
func (t *Tokenizer) Tokenize(doc string) []types.Token {
	lines := newLineIndex(doc)
	tokens := make([]types.Token, 0, len(doc)/16)

	// pending holds the start of literal text not yet emitted; markup that
	// degrades to text is folded into it
	pending := 0

	for _, loc := range markupPattern.FindAllStringIndex(doc, -1) {
		start, end := loc[0], loc[1]

		tok, ok := normalizeMarkup(doc[start:end])
		if !ok {
			continue
		}

		tokens = appendText(tokens, doc, pending, start, lines)
		tok.Line = lines.lineAt(start)
		tokens = append(tokens, tok)
		pending = end
	}

	return appendText(tokens, doc, pending, len(doc), lines)
}

// appendText emits doc[start:end] as a text token when it holds non-space content
func appendText(tokens []types.Token, doc string, start, end int, lines lineIndex) []types.Token {
	if start >= end {
		return tokens
	}

	segment := doc[start:end]
	text := collapseSpace(segment)
	if text == "" {
		return tokens
	}

	// Line of the first non-space character
	offset := start + len(segment) - len(strings.TrimLeft(segment, " \t\r\n\f\v"))

	return append(tokens, types.Token{
		Kind:    types.TokenText,
		Content: text,
		Line:    lines.lineAt(offset),
	})
}

// normalizeMarkup classifies a matched '<...>' run. It returns false when the
// run is not a tag or comment and must stay literal text.
func normalizeMarkup(raw string) (types.Token, bool) {
	z := html.NewTokenizer(strings.NewReader(raw))
	tt := z.Next()
	if tt == html.ErrorToken {
		return types.Token{}, false
	}

	tok := z.Token()

	switch tt {
	case html.StartTagToken, html.SelfClosingTagToken, html.DoctypeToken:
		return types.Token{Kind: types.TokenTagOpen, Content: collapseSpace(tok.String())}, true
	case html.EndTagToken:
		return types.Token{Kind: types.TokenTagClose, Content: collapseSpace(tok.String())}, true
	case html.CommentToken:
		return types.Token{Kind: types.TokenComment, Content: "<!--" + collapseSpace(tok.Data) + "-->"}, true
	default:
		// Text such as "<3 apples>" that merely looks like markup
		return types.Token{}, false
	}
}

// collapseSpace replaces every whitespace run with one space and trims the edges
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// lineIndex stores the byte offset at which each line starts
type lineIndex []int

func newLineIndex(doc string) lineIndex {
	starts := make(lineIndex, 1, strings.Count(doc, "\n")+1)
	for i := 0; i < len(doc); i++ {
		if doc[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt returns the 1-based line containing the byte offset
func (idx lineIndex) lineAt(offset int) int {
	// Number of line starts at or before offset
	return sort.Search(len(idx), func(i int) bool { return idx[i] > offset })
}
