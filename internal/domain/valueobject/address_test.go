package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclarationPath(t *testing.T) {
	t.Run("should parse dotted paths", func(t *testing.T) {
		path, err := ParseDeclarationPath("2.1.3")
		require.NoError(t, err)
		assert.Equal(t, DeclarationPath{2, 1, 3}, path)
	})

	t.Run("should parse a single component", func(t *testing.T) {
		path, err := ParseDeclarationPath("7")
		require.NoError(t, err)
		assert.Equal(t, DeclarationPath{7}, path)
	})

	t.Run("should reject malformed paths", func(t *testing.T) {
		tests := []struct {
			raw     string
			wantErr string
		}{
			{"", "address cannot be empty"},
			{"a.b", `address component "a" is not a number`},
			{"1..2", `address component "" is not a number`},
			{"0", "address component 0 must be positive"},
			{"1.-2", "address component -2 must be positive"},
		}

		for _, tt := range tests {
			_, err := ParseDeclarationPath(tt.raw)
			require.Error(t, err, "Should reject %q", tt.raw)
			assert.EqualError(t, err, tt.wantErr)
		}
	})
}

func TestDeclarationPathNavigation(t *testing.T) {
	t.Run("should render the dot-joined form", func(t *testing.T) {
		assert.Equal(t, "2.1.3", DeclarationPath{2, 1, 3}.String())
		assert.Equal(t, "4", DeclarationPath{4}.String())
	})

	t.Run("should extend with a child index", func(t *testing.T) {
		parent := DeclarationPath{1, 2}
		child := parent.Child(3)
		assert.Equal(t, DeclarationPath{1, 2, 3}, child)
		assert.Equal(t, DeclarationPath{1, 2}, parent, "Child should not mutate the receiver")
	})

	t.Run("should step up to the parent", func(t *testing.T) {
		parent, ok := DeclarationPath{1, 2, 3}.Parent()
		require.True(t, ok)
		assert.Equal(t, DeclarationPath{1, 2}, parent)
	})

	t.Run("should report no parent for top-level paths", func(t *testing.T) {
		_, ok := DeclarationPath{1}.Parent()
		assert.False(t, ok)
		_, ok = DeclarationPath{}.Parent()
		assert.False(t, ok)
	})
}

func TestTokenAddress(t *testing.T) {
	t.Run("should resolve a single component to a token index", func(t *testing.T) {
		addr, err := ParseTokenAddress("17")
		require.NoError(t, err)

		index, ok := addr.TokenIndex()
		require.True(t, ok)
		assert.Equal(t, 17, index)
	})

	t.Run("should parse dotted forms that never match", func(t *testing.T) {
		addr, err := ParseTokenAddress("1.2")
		require.NoError(t, err)
		assert.Equal(t, "1.2", addr.String())

		_, ok := addr.TokenIndex()
		assert.False(t, ok, "A dotted address cannot address a token")
	})

	t.Run("should reject malformed addresses", func(t *testing.T) {
		_, err := ParseTokenAddress("")
		require.Error(t, err)
		_, err = ParseTokenAddress("x")
		require.Error(t, err)
	})
}

func TestParseSelectionStrategy(t *testing.T) {
	t.Run("should accept all strategy names", func(t *testing.T) {
		tests := map[string]SelectionStrategy{
			"first":             SelectFirst,
			"last":              SelectLast,
			"largest-span":      SelectLargestSpan,
			"smallest-span":     SelectSmallestSpan,
			"nearest-to-column": SelectNearestToColumn,
		}

		for raw, want := range tests {
			got, err := ParseSelectionStrategy(raw)
			require.NoError(t, err, "Should parse %q", raw)
			assert.Equal(t, want, got)
		}
	})

	t.Run("should default to first", func(t *testing.T) {
		got, err := ParseSelectionStrategy("")
		require.NoError(t, err)
		assert.Equal(t, SelectFirst, got)
	})

	t.Run("should normalize case and spacing", func(t *testing.T) {
		got, err := ParseSelectionStrategy("  Last ")
		require.NoError(t, err)
		assert.Equal(t, SelectLast, got)
	})

	t.Run("should reject unknown names", func(t *testing.T) {
		_, err := ParseSelectionStrategy("middle")
		require.Error(t, err)
		assert.EqualError(t, err, `unknown selection strategy "middle"`)
	})
}

// lineTokens lays out `let counter = 0` on row zero with realistic columns.
func lineTokens() []Token {
	return []Token{
		{Text: "let", StartPos: Position{Row: 0, Column: 0}, EndPos: Position{Row: 0, Column: 3}},
		{Text: "counter", StartPos: Position{Row: 0, Column: 4}, EndPos: Position{Row: 0, Column: 11}},
		{Text: "=", StartPos: Position{Row: 0, Column: 12}, EndPos: Position{Row: 0, Column: 13}},
		{Text: "0", StartPos: Position{Row: 0, Column: 14}, EndPos: Position{Row: 0, Column: 15}},
	}
}

func TestTokensOnLine(t *testing.T) {
	t.Run("should return the tokens starting on the row", func(t *testing.T) {
		tokens := append(lineTokens(), Token{
			Text:     "}",
			StartPos: Position{Row: 1, Column: 0},
			EndPos:   Position{Row: 1, Column: 1},
		})

		onLine := TokensOnLine(tokens, 0)
		require.Len(t, onLine, 4)
		assert.Equal(t, "let", onLine[0].Text)

		onLine = TokensOnLine(tokens, 1)
		require.Len(t, onLine, 1)
		assert.Equal(t, "}", onLine[0].Text)
	})

	t.Run("should skip tokens whose text was deleted", func(t *testing.T) {
		tokens := lineTokens()
		tokens[2].Text = ""

		onLine := TokensOnLine(tokens, 0)
		require.Len(t, onLine, 3)
	})

	t.Run("should return empty for rows outside the file", func(t *testing.T) {
		assert.Empty(t, TokensOnLine(lineTokens(), 42))
	})
}

func TestSelectToken(t *testing.T) {
	t.Run("should pick by position strategies", func(t *testing.T) {
		tokens := lineTokens()

		tok, ok := SelectToken(tokens, SelectFirst, 0)
		require.True(t, ok)
		assert.Equal(t, "let", tok.Text)

		tok, ok = SelectToken(tokens, SelectLast, 0)
		require.True(t, ok)
		assert.Equal(t, "0", tok.Text)
	})

	t.Run("should pick by span strategies", func(t *testing.T) {
		tokens := lineTokens()

		tok, ok := SelectToken(tokens, SelectLargestSpan, 0)
		require.True(t, ok)
		assert.Equal(t, "counter", tok.Text)

		tok, ok = SelectToken(tokens, SelectSmallestSpan, 0)
		require.True(t, ok)
		assert.Equal(t, "=", tok.Text, "Ties on length keep the earliest token")
	})

	t.Run("should pick the token nearest to a column", func(t *testing.T) {
		tokens := lineTokens()

		tok, ok := SelectToken(tokens, SelectNearestToColumn, 6)
		require.True(t, ok)
		assert.Equal(t, "counter", tok.Text, "Columns inside a token are at distance zero")

		tok, ok = SelectToken(tokens, SelectNearestToColumn, 13)
		require.True(t, ok)
		assert.Equal(t, "=", tok.Text)
	})

	t.Run("should break distance ties towards the earlier token", func(t *testing.T) {
		tokens := lineTokens()

		// Column 3 sits one past "let" and one before "counter".
		tok, ok := SelectToken(tokens, SelectNearestToColumn, 3)
		require.True(t, ok)
		assert.Equal(t, "let", tok.Text)
	})

	t.Run("should treat a multi-line token as running to the line end", func(t *testing.T) {
		tokens := []Token{
			{Text: "short", StartPos: Position{Row: 0, Column: 0}, EndPos: Position{Row: 0, Column: 5}},
			{
				Text:     "\"\"\"\nlong literal\n\"\"\"",
				StartPos: Position{Row: 0, Column: 8},
				EndPos:   Position{Row: 2, Column: 3},
			},
		}

		tok, ok := SelectToken(tokens, SelectNearestToColumn, 60)
		require.True(t, ok)
		assert.Equal(t, tokens[1].Text, tok.Text)
	})

	t.Run("should report false without tokens", func(t *testing.T) {
		_, ok := SelectToken(nil, SelectFirst, 0)
		assert.False(t, ok)
	})
}
