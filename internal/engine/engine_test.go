package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/domdrift/internal/hasher"
	"github.com/dshills/domdrift/pkg/types"
)

func readFixture(t testing.TB, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func newTestEngine(t testing.TB) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 4
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func tag(s string) types.Token  { return types.Token{Kind: types.TokenTagOpen, Content: s, Line: 1} }
func end(s string) types.Token  { return types.Token{Kind: types.TokenTagClose, Content: s, Line: 1} }
func text(s string) types.Token { return types.Token{Kind: types.TokenText, Content: s, Line: 1} }

// withoutTime clears the only field allowed to differ between runs
func withoutTime(r types.ComparisonResult) types.ComparisonResult {
	r.ProcessingTime = 0
	return r
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "md5" }},
		{"unknown method", func(c *Config) { c.Method = "fuzzy" }},
		{"zero cache limit", func(c *Config) { c.CacheSizeLimit = 0 }},
		{"negative modify distance", func(c *Config) { c.LineDiff.ModifyDistance = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			e, err := New(cfg)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
		})
	}
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	e, err := New(nil)
	require.NoError(t, err)

	opts := e.Options()
	assert.Equal(t, DefaultChunkSize, opts.ChunkSize)
	assert.Equal(t, types.AlgorithmXXHash, opts.Algorithm)
	assert.Equal(t, types.MethodLite, opts.Method)
	assert.True(t, opts.UseCache)
}

func TestNewWithCache_RequiresCache(t *testing.T) {
	_, err := NewWithCache(DefaultConfig(), nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
}

func TestCompare_InvalidOptionsFailBeforeHashing(t *testing.T) {
	e := newTestEngine(t)
	tokens := []types.Token{tag("<div>")}

	opts := e.Options()
	opts.ChunkSize = 0
	c, err := e.Compare(tokens, tokens, opts)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)

	opts = e.Options()
	opts.Algorithm = "crc32"
	_, err = e.Compare(tokens, tokens, opts)
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)

	stats := e.Stats()
	assert.Zero(t, stats.Comparisons)
	assert.Zero(t, stats.Cache.Entries)
	assert.Zero(t, stats.Cache.Misses)
}

func TestCompare_ScriptInsertionExample(t *testing.T) {
	a := []types.Token{tag("<div>"), tag("<h1>"), text("Title"), end("</h1>")}
	b := []types.Token{tag("<div>"), tag("<h1>"), text("Title"), tag("<script>"), text("var x=1;"), end("</script>"), end("</h1>")}

	e := newTestEngine(t)
	for _, method := range []types.Method{types.MethodLite, types.MethodTree} {
		t.Run(string(method), func(t *testing.T) {
			opts := e.Options()
			opts.Method = method

			c, err := e.Compare(a, b, opts)
			require.NoError(t, err)

			r := c.Result
			assert.Equal(t, 4, r.TotalChunksA)
			assert.Equal(t, 7, r.TotalChunksB)
			assert.Equal(t, 4, r.CommonChunks)
			assert.Equal(t, 3, r.DifferentChunks)
			assert.InDelta(t, 42.857, r.DifferencePercent, 0.001)
			assert.Equal(t, method, r.Method)
			assert.Equal(t, 1, r.ChunkSize)
		})
	}
}

func TestCompare_SelfIsZero(t *testing.T) {
	e := newTestEngine(t)
	doc := readFixture(t, "v1.html")

	for _, size := range []int{1, 2, 3, 7, 50, 1000} {
		for _, alg := range []types.Algorithm{types.AlgorithmXXHash, types.AlgorithmSHA256} {
			for _, method := range []types.Method{types.MethodLite, types.MethodTree} {
				opts := Options{ChunkSize: size, Algorithm: alg, Method: method, UseCache: true}

				c, err := e.CompareHTML(doc, doc, opts)
				require.NoError(t, err)

				assert.Zero(t, c.Result.DifferentChunks, "size=%d alg=%s method=%s", size, alg, method)
				assert.Zero(t, c.Result.DifferencePercent)
				assert.True(t, c.Result.Identical())
			}
		}
	}
}

func TestCompare_EmptyDocuments(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.CompareHTML("", "   \n ", e.Options())
	require.NoError(t, err)
	assert.Zero(t, c.Result.TotalChunksA)
	assert.Zero(t, c.Result.TotalChunksB)
	assert.Zero(t, c.Result.DifferencePercent)
}

func TestCompare_MethodsAgree(t *testing.T) {
	e := newTestEngine(t)
	v1, v2 := readFixture(t, "v1.html"), readFixture(t, "v2.html")

	for _, size := range []int{1, 2, 4, 16} {
		for _, alg := range []types.Algorithm{types.AlgorithmXXHash, types.AlgorithmSHA256} {
			base := Options{ChunkSize: size, Algorithm: alg, UseCache: true}

			lite := base
			lite.Method = types.MethodLite
			tree := base
			tree.Method = types.MethodTree

			cl, err := e.CompareHTML(v1, v2, lite)
			require.NoError(t, err)
			ct, err := e.CompareHTML(v1, v2, tree)
			require.NoError(t, err)

			assert.Equal(t, cl.Result.CommonChunks, ct.Result.CommonChunks, "size=%d", size)
			assert.Equal(t, cl.Result.DifferentChunks, ct.Result.DifferentChunks, "size=%d", size)
			assert.Equal(t, cl.Result.DifferencePercent, ct.Result.DifferencePercent, "size=%d", size)
			assert.Positive(t, cl.Result.DifferentChunks)
		}
	}
}

func TestCompare_ColdAndWarmCacheAgree(t *testing.T) {
	v1, v2 := readFixture(t, "v1.html"), readFixture(t, "v2.html")

	cfg := DefaultConfig()
	cfg.CacheSizeLimit = 8 // forces evictions between runs
	e, err := New(cfg)
	require.NoError(t, err)

	for _, method := range []types.Method{types.MethodLite, types.MethodTree} {
		opts := e.Options()
		opts.Method = method

		cold, err := e.CompareHTML(v1, v2, opts)
		require.NoError(t, err)
		warm, err := e.CompareHTML(v1, v2, opts)
		require.NoError(t, err)

		opts.UseCache = false
		uncached, err := e.CompareHTML(v1, v2, opts)
		require.NoError(t, err)

		assert.Equal(t, withoutTime(cold.Result), withoutTime(warm.Result))
		assert.Equal(t, withoutTime(cold.Result), withoutTime(uncached.Result))
		assert.Equal(t, cold.A.Hashes, warm.A.Hashes)
		assert.Equal(t, cold.B.Hashes, uncached.B.Hashes)
	}

	stats := e.CacheStats()
	assert.LessOrEqual(t, stats.Entries, 8)
	assert.Positive(t, stats.Evictions)
}

func TestCompare_ParallelMatchesSequential(t *testing.T) {
	v1, v2 := readFixture(t, "v1.html"), readFixture(t, "v2.html")

	par := newTestEngine(t)

	cfg := DefaultConfig()
	cfg.UseParallel = false
	seq, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, seq.Stats().Workers)

	cp, err := par.CompareHTML(v1, v2, par.Options())
	require.NoError(t, err)
	cs, err := seq.CompareHTML(v1, v2, seq.Options())
	require.NoError(t, err)

	assert.Equal(t, withoutTime(cp.Result), withoutTime(cs.Result))
	assert.Equal(t, cp.B.Hashes, cs.B.Hashes)
}

func TestCompare_SharedCacheAcrossEngines(t *testing.T) {
	cache, err := hasher.NewCache(1000)
	require.NoError(t, err)

	e1, err := NewWithCache(DefaultConfig(), cache)
	require.NoError(t, err)
	e2, err := NewWithCache(DefaultConfig(), cache)
	require.NoError(t, err)

	doc := readFixture(t, "v1.html")
	_, err = e1.CompareHTML(doc, doc, e1.Options())
	require.NoError(t, err)

	before := cache.Stats().Hits
	_, err = e2.CompareHTML(doc, doc, e2.Options())
	require.NoError(t, err)

	assert.Greater(t, cache.Stats().Hits, before)
	assert.Equal(t, uint64(1), e2.Stats().Comparisons)
}

func TestCompare_MethodAlias(t *testing.T) {
	e := newTestEngine(t)
	opts := e.Options()
	opts.Method = "merkle"

	c, err := e.CompareHTML("<p>a</p>", "<p>b</p>", opts)
	require.NoError(t, err)
	assert.Equal(t, types.MethodTree, c.Result.Method)
}

func TestLineDiff(t *testing.T) {
	e := newTestEngine(t)

	c, err := e.CompareHTML(readFixture(t, "v1.html"), readFixture(t, "v2.html"), e.Options())
	require.NoError(t, err)

	entries, err := e.LineDiff(c)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	prev := 0
	for _, entry := range entries {
		require.NoError(t, entry.Range.Validate())
		assert.GreaterOrEqual(t, entry.Range.Start, prev)
		assert.Equal(t, entry.ChangeType.Symbol(), entry.ContentPreview[:1])
		prev = entry.Range.Start
	}

	// "Canvas shoes" on line 17 became "Leather sandals" on line 18 of v2;
	// with the default policy they are reported separately
	var sawRemoved, sawAdded bool
	for _, entry := range entries {
		if entry.ChangeType == types.ChangeRemoved && entry.ContentPreview == "-TEXT:Canvas shoes" {
			sawRemoved = true
		}
		if entry.ChangeType == types.ChangeAdded && entry.ContentPreview == "+TEXT:Leather sandals" {
			sawAdded = true
		}
	}
	assert.True(t, sawRemoved)
	assert.True(t, sawAdded)
}

func TestLineDiff_Identical(t *testing.T) {
	e := newTestEngine(t)
	doc := readFixture(t, "v2.html")

	c, err := e.CompareHTML(doc, doc, e.Options())
	require.NoError(t, err)

	entries, err := e.LineDiff(c)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLineDiff_Nil(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.LineDiff(nil)
	assert.ErrorIs(t, err, types.ErrInternalInconsistency)
}

func BenchmarkCompareHTML(b *testing.B) {
	v1, v2 := readFixture(b, "v1.html"), readFixture(b, "v2.html")
	e := newTestEngine(b)

	for _, method := range []types.Method{types.MethodLite, types.MethodTree} {
		b.Run(string(method), func(b *testing.B) {
			opts := e.Options()
			opts.Method = method
			for i := 0; i < b.N; i++ {
				if _, err := e.CompareHTML(v1, v2, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
