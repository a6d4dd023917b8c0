package types

import (
	"fmt"
	"strings"
)

// TokenKind represents the type of HTML token
type TokenKind string

const (
	TokenTagOpen  TokenKind = "tag_open"
	TokenTagClose TokenKind = "tag_close"
	TokenText     TokenKind = "text"
	TokenComment  TokenKind = "comment"
)

// Kind prefixes used in chunk content
const (
	PrefixTag     = "TAG:"
	PrefixText    = "TEXT:"
	PrefixComment = "COMMENT:"
)

// Token is a normalized piece of an HTML document
type Token struct {
	Kind    TokenKind
	Content string // Normalized content (tag markup, collapsed text, comment)
	Line    int    // 1-based source line of the token's first character
}

// Prefix returns the chunk-content prefix for the kind
func (k TokenKind) Prefix() string {
	switch k {
	case TokenTagOpen, TokenTagClose:
		return PrefixTag
	case TokenText:
		return PrefixText
	case TokenComment:
		return PrefixComment
	default:
		return ""
	}
}

// Validate checks if the token kind is valid
func (k TokenKind) Validate() error {
	switch k {
	case TokenTagOpen, TokenTagClose, TokenText, TokenComment:
		return nil
	default:
		return fmt.Errorf("invalid token kind %q", string(k))
	}
}

// String renders the token in its kind-prefixed form, e.g. "TAG:<div>" or "TEXT:Title"
func (t Token) String() string {
	return t.Kind.Prefix() + t.Content
}

// ParseToken is the inverse of Token.String. The returned token has no line number.
func ParseToken(s string) (Token, error) {
	switch {
	case strings.HasPrefix(s, PrefixTag):
		content := strings.TrimPrefix(s, PrefixTag)
		kind := TokenTagOpen
		if strings.HasPrefix(content, "</") {
			kind = TokenTagClose
		}
		return Token{Kind: kind, Content: content}, nil
	case strings.HasPrefix(s, PrefixText):
		return Token{Kind: TokenText, Content: strings.TrimPrefix(s, PrefixText)}, nil
	case strings.HasPrefix(s, PrefixComment):
		return Token{Kind: TokenComment, Content: strings.TrimPrefix(s, PrefixComment)}, nil
	default:
		return Token{}, fmt.Errorf("unrecognized token %q", s)
	}
}
