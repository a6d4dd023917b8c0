package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/pkg/types"
)

func TestNew(t *testing.T) {
	tok := New()
	assert.NotNil(t, tok)
}

func tokenStrings(tokens []types.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.String()
	}
	return out
}

func TestTokenize_Simple(t *testing.T) {
	tokens := New().Tokenize(`<div><h1>Title</h1></div>`)

	assert.Equal(t, []string{
		"TAG:<div>",
		"TAG:<h1>",
		"TEXT:Title",
		"TAG:</h1>",
		"TAG:</div>",
	}, tokenStrings(tokens))

	assert.Equal(t, types.TokenTagOpen, tokens[0].Kind)
	assert.Equal(t, types.TokenText, tokens[2].Kind)
	assert.Equal(t, types.TokenTagClose, tokens[3].Kind)
}

func TestTokenize_Normalization(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "tag names lowercased",
			input: `<DIV></Div>`,
			want:  []string{"TAG:<div>", "TAG:</div>"},
		},
		{
			name:  "attribute order preserved",
			input: `<a  HREF="/x"   class="btn">go</a>`,
			want:  []string{`TAG:<a href="/x" class="btn">`, "TEXT:go", "TAG:</a>"},
		},
		{
			name:  "text whitespace collapsed",
			input: "<p>\n   hello \t\n  world   </p>",
			want:  []string{"TAG:<p>", "TEXT:hello world", "TAG:</p>"},
		},
		{
			name:  "whitespace-only text dropped",
			input: "<ul>\n  \n  <li>a</li>\n</ul>",
			want:  []string{"TAG:<ul>", "TAG:<li>", "TEXT:a", "TAG:</li>", "TAG:</ul>"},
		},
		{
			name:  "self closing",
			input: `<br/><img src="a.png" />`,
			want:  []string{"TAG:<br/>", `TAG:<img src="a.png"/>`},
		},
		{
			name:  "comment",
			input: "<p>x</p><!--  note \n  here -->",
			want:  []string{"TAG:<p>", "TEXT:x", "TAG:</p>", "COMMENT:<!--note here-->"},
		},
		{
			name:  "comment containing markup",
			input: "<!-- <b>not a tag</b> -->",
			want:  []string{"COMMENT:<!--<b>not a tag</b>-->"},
		},
	}

	tok := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenStrings(tok.Tokenize(tt.input)))
		})
	}
}

func TestTokenize_MalformedDegradesToText(t *testing.T) {
	tok := New()

	t.Run("not a tag", func(t *testing.T) {
		tokens := tok.Tokenize(`<p>I <3 apples> a lot</p>`)
		assert.Equal(t, []string{"TAG:<p>", "TEXT:I <3 apples> a lot", "TAG:</p>"}, tokenStrings(tokens))
	})

	t.Run("unterminated tag", func(t *testing.T) {
		tokens := tok.Tokenize(`<div>open <span`)
		assert.Equal(t, []string{"TAG:<div>", "TEXT:open <span"}, tokenStrings(tokens))
	})

	t.Run("comparison in script", func(t *testing.T) {
		tokens := tok.Tokenize(`<script>if (a<b) x=1;</script>`)
		assert.Equal(t, []string{"TAG:<script>", "TEXT:if (a<b) x=1;", "TAG:</script>"}, tokenStrings(tokens))
	})

	t.Run("unbalanced tags are kept", func(t *testing.T) {
		tokens := tok.Tokenize(`</p></p><b>`)
		assert.Equal(t, []string{"TAG:</p>", "TAG:</p>", "TAG:<b>"}, tokenStrings(tokens))
	})
}

func TestTokenize_LineNumbers(t *testing.T) {
	doc := "<html>\n<body>\n  <h1>\n    Title\n  </h1>\n</body>\n</html>"
	tokens := New().Tokenize(doc)
	require.Len(t, tokens, 7)

	lines := make([]int, len(tokens))
	for i, tok := range tokens {
		lines[i] = tok.Line
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, lines)
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, New().Tokenize(""))
	assert.Empty(t, New().Tokenize("   \n\t  "))
}

func TestTokenize_Deterministic(t *testing.T) {
	doc := strings.Repeat(`<section CLASS="a"><p>para   text</p><!-- c --></section>`+"\n", 50)
	tok := New()

	first := tok.Tokenize(doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, tok.Tokenize(doc))
	}
}

func TestTokenize_NoNewlineInTokens(t *testing.T) {
	doc := "<div\n class=\"x\"\n>\nmulti\nline\n</div>"
	for _, tok := range New().Tokenize(doc) {
		assert.NotContains(t, tok.Content, "\n")
	}
}

func TestLineIndex(t *testing.T) {
	idx := newLineIndex("ab\ncd\n\nef")
	assert.Equal(t, 1, idx.lineAt(0))
	assert.Equal(t, 1, idx.lineAt(2))
	assert.Equal(t, 2, idx.lineAt(3))
	assert.Equal(t, 3, idx.lineAt(6))
	assert.Equal(t, 4, idx.lineAt(7))
}

func BenchmarkTokenize(b *testing.B) {
	doc := strings.Repeat(`<div class="row"><span>cell</span><a href="/x">link</a></div>`+"\n", 1000)
	tok := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tok.Tokenize(doc)
	}
}
