package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"who", "directed", "inception"}, Tokenize("  Who directed Inception?  "))
	assert.Empty(t, Tokenize("   ?  "))
}

func TestMatch_LiteralOnly(t *testing.T) {
	b, ok := Match(ParsePattern("bye"), []string{"bye"})
	require.True(t, ok)
	assert.Empty(t, b)

	_, ok = Match(ParsePattern("bye"), []string{"bye", "now"})
	assert.False(t, ok)

	_, ok = Match(ParsePattern("bye"), nil)
	assert.False(t, ok)
}

func TestMatch_SingleWildcard(t *testing.T) {
	p := ParsePattern("what movies were made in _")

	b, ok := Match(p, Tokenize("what movies were made in 2010"))
	require.True(t, ok)
	assert.Equal(t, "2010", b.Text(0))

	// "_" 只吃一个 token，多出来的部分必须导致失败。
	_, ok = Match(p, Tokenize("what movies were made in 1990 and 2000"))
	assert.False(t, ok)

	// "_" 不能匹配空。
	_, ok = Match(p, Tokenize("what movies were made in"))
	assert.False(t, ok)
}

func TestMatch_TwoSingleWildcards(t *testing.T) {
	b, ok := Match(ParsePattern("what movies were made between _ and _"), Tokenize("what movies were made between 1990 and 2000"))
	require.True(t, ok)
	require.Len(t, b, 2)
	assert.Equal(t, "1990", b.Text(0))
	assert.Equal(t, "2000", b.Text(1))
}

func TestMatch_ManyWildcardTrailing(t *testing.T) {
	b, ok := Match(ParsePattern("who directed %"), Tokenize("who directed the dark knight"))
	require.True(t, ok)
	assert.Equal(t, []string{"the", "dark", "knight"}, b[0])
	assert.Equal(t, "the dark knight", b.Text(0))

	_, ok = Match(ParsePattern("who directed %"), Tokenize("who directed"))
	assert.False(t, ok, "% 至少匹配一个 token")
}

func TestMatch_ManyWildcardInMiddle(t *testing.T) {
	b, ok := Match(ParsePattern("in what movies did % appear"), Tokenize("in what movies did leonardo dicaprio appear"))
	require.True(t, ok)
	assert.Equal(t, "leonardo dicaprio", b.Text(0))

	_, ok = Match(ParsePattern("when was % made"), Tokenize("when was inception released"))
	assert.False(t, ok)
}

func TestMatch_ManyIsLazyWithBacktracking(t *testing.T) {
	// 两种拆分都合法："a" + "x b x"，或 "a x b" + "x"；最短优先取第一种。
	b, ok := Match(ParsePattern("% x %"), []string{"a", "x", "b", "x", "c"})
	require.True(t, ok)
	assert.Equal(t, "a", b.Text(0))
	assert.Equal(t, "b x c", b.Text(1))

	// 需要回溯：第一个 % 先尝试 "made"，后续字面量对不上再扩展。
	b, ok = Match(ParsePattern("when was % made"), Tokenize("when was made in dagenham made"))
	require.True(t, ok)
	assert.Equal(t, "made in dagenham", b.Text(0))
}

func TestMatch_MixedWildcards(t *testing.T) {
	b, ok := Match(ParsePattern("_ % _"), []string{"a", "b", "c", "d"})
	require.True(t, ok)
	assert.Equal(t, Binding{{"a"}, {"b", "c"}, {"d"}}, b)
}

func TestBinding_TextOutOfRange(t *testing.T) {
	var b Binding
	assert.Equal(t, "", b.Text(0))
	assert.Equal(t, "", b.Text(-1))
}

func TestPattern_StringAndWildcards(t *testing.T) {
	p := ParsePattern("  who   was the director of %  ")
	assert.Equal(t, "who was the director of %", p.String())
	assert.Equal(t, 1, p.Wildcards())
	assert.Equal(t, 2, ParsePattern("between _ and _").Wildcards())
}
