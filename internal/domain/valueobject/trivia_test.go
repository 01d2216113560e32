package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanTrivia(t *testing.T) {
	t.Run("should tag whitespace runs by kind", func(t *testing.T) {
		pieces := ScanTrivia("  \t\t\n\n")
		require.Len(t, pieces, 3)
		assert.Equal(t, TriviaPiece{Kind: TriviaSpaces, Text: "  "}, pieces[0])
		assert.Equal(t, TriviaPiece{Kind: TriviaTabs, Text: "\t\t"}, pieces[1])
		assert.Equal(t, TriviaPiece{Kind: TriviaNewlines, Text: "\n\n"}, pieces[2])
	})

	t.Run("should treat CRLF runs as newlines", func(t *testing.T) {
		pieces := ScanTrivia("\r\n\r\n")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaNewlines, pieces[0].Kind)
		assert.Equal(t, "\r\n\r\n", pieces[0].Text)
		assert.Equal(t, 2, pieces[0].NewlineCount())
	})

	t.Run("should tag bare carriage returns separately", func(t *testing.T) {
		pieces := ScanTrivia("\r")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaCarriageReturns, pieces[0].Kind)
		assert.Equal(t, 0, pieces[0].NewlineCount())
	})

	t.Run("should tag line comments up to the line break", func(t *testing.T) {
		pieces := ScanTrivia("// note\n")
		require.Len(t, pieces, 2)
		assert.Equal(t, TriviaPiece{Kind: TriviaLineComment, Text: "// note"}, pieces[0])
		assert.Equal(t, TriviaNewlines, pieces[1].Kind)
	})

	t.Run("should distinguish doc line comments from slash banners", func(t *testing.T) {
		pieces := ScanTrivia("/// doc")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaDocLineComment, pieces[0].Kind)

		pieces = ScanTrivia("//// banner")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaLineComment, pieces[0].Kind)
	})

	t.Run("should scan nested block comments as one piece", func(t *testing.T) {
		pieces := ScanTrivia("/* outer /* inner */ tail */")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaBlockComment, pieces[0].Kind)
		assert.Equal(t, "/* outer /* inner */ tail */", pieces[0].Text)
	})

	t.Run("should distinguish doc block comments from star banners", func(t *testing.T) {
		pieces := ScanTrivia("/** doc */")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaDocBlockComment, pieces[0].Kind)

		pieces = ScanTrivia("/*** banner ***/")
		require.Len(t, pieces, 1)
		assert.Equal(t, TriviaBlockComment, pieces[0].Kind)
	})

	t.Run("should tag unrecognized text as unexpected", func(t *testing.T) {
		pieces := ScanTrivia("stray; // rest")
		require.Len(t, pieces, 3)
		assert.Equal(t, TriviaPiece{Kind: TriviaUnexpected, Text: "stray;"}, pieces[0])
		assert.Equal(t, TriviaSpaces, pieces[1].Kind)
		assert.Equal(t, TriviaLineComment, pieces[2].Kind)
	})

	t.Run("should reproduce the scanned text exactly", func(t *testing.T) {
		inputs := []string{
			"",
			"   \t\n  /// Doc line\n  /* block /* nested */ */\r\n\todd\n",
			"// unterminated line comment",
			"/* unterminated block",
		}
		for _, input := range inputs {
			assert.Equal(t, input, ScanTrivia(input).Text(),
				"Scanned pieces should concatenate back to %q", input)
		}
	})
}

func TestTriviaPieceClassification(t *testing.T) {
	tests := []struct {
		kind        TriviaKind
		whitespace  bool
		indentation bool
		comment     bool
		docComment  bool
	}{
		{TriviaSpaces, true, true, false, false},
		{TriviaTabs, true, true, false, false},
		{TriviaNewlines, true, false, false, false},
		{TriviaCarriageReturns, true, false, false, false},
		{TriviaLineComment, false, false, true, false},
		{TriviaDocLineComment, false, false, true, true},
		{TriviaBlockComment, false, false, true, false},
		{TriviaDocBlockComment, false, false, true, true},
		{TriviaUnexpected, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p := TriviaPiece{Kind: tt.kind}
			assert.Equal(t, tt.whitespace, p.IsWhitespace())
			assert.Equal(t, tt.indentation, p.IsIndentation())
			assert.Equal(t, tt.comment, p.IsComment())
			assert.Equal(t, tt.docComment, p.IsDocComment())
		})
	}
}

func TestAttachedDocBlock(t *testing.T) {
	docLine := func(text string) TriviaPiece {
		return TriviaPiece{Kind: TriviaDocLineComment, Text: text}
	}
	newline := TriviaPiece{Kind: TriviaNewlines, Text: "\n"}
	blank := TriviaPiece{Kind: TriviaNewlines, Text: "\n\n"}
	indent := TriviaPiece{Kind: TriviaSpaces, Text: "    "}

	t.Run("should return the doc lines directly above the token", func(t *testing.T) {
		leading := Trivia{docLine("/// First"), newline, docLine("/// Second"), newline}
		block := leading.AttachedDocBlock()
		require.Len(t, block, 4)
		assert.Equal(t, "/// First\n/// Second\n", block.Text())
	})

	t.Run("should exclude indentation before the token", func(t *testing.T) {
		leading := Trivia{docLine("/// Doc"), newline, indent}
		block := leading.AttachedDocBlock()
		assert.Equal(t, "/// Doc\n", block.Text())
	})

	t.Run("should stop at a blank line", func(t *testing.T) {
		leading := Trivia{docLine("/// Detached"), blank, docLine("/// Attached"), newline}
		block := leading.AttachedDocBlock()
		assert.Equal(t, "/// Attached\n", block.Text())
	})

	t.Run("should stop at an ordinary comment", func(t *testing.T) {
		leading := Trivia{
			TriviaPiece{Kind: TriviaLineComment, Text: "// plain"},
			newline,
			docLine("/// Doc"),
			newline,
		}
		block := leading.AttachedDocBlock()
		assert.Equal(t, "/// Doc\n", block.Text())
	})

	t.Run("should include doc block comments", func(t *testing.T) {
		leading := Trivia{
			TriviaPiece{Kind: TriviaDocBlockComment, Text: "/** Block doc */"},
			newline,
		}
		block := leading.AttachedDocBlock()
		assert.Equal(t, "/** Block doc */\n", block.Text())
	})

	t.Run("should include indentation inside the block", func(t *testing.T) {
		leading := Trivia{newline, indent, docLine("/// Doc"), newline, indent}
		block := leading.AttachedDocBlock()
		assert.Equal(t, "    /// Doc\n", block.Text())
	})

	t.Run("should return empty without an attached doc comment", func(t *testing.T) {
		assert.Empty(t, Trivia{newline, indent}.AttachedDocBlock())
		assert.Empty(t, Trivia{
			TriviaPiece{Kind: TriviaBlockComment, Text: "/* not doc */"},
			newline,
		}.AttachedDocBlock())
		assert.Empty(t, Trivia(nil).AttachedDocBlock())
	})
}

func TestContainsBlankLine(t *testing.T) {
	newline := TriviaPiece{Kind: TriviaNewlines, Text: "\n"}

	t.Run("should detect consecutive line breaks", func(t *testing.T) {
		assert.True(t, Trivia{TriviaPiece{Kind: TriviaNewlines, Text: "\n\n"}}.ContainsBlankLine())
		assert.True(t, Trivia{newline, newline}.ContainsBlankLine())
	})

	t.Run("should ignore horizontal whitespace between breaks", func(t *testing.T) {
		withSpaces := Trivia{newline, TriviaPiece{Kind: TriviaSpaces, Text: "   "}, newline}
		assert.True(t, withSpaces.ContainsBlankLine())
	})

	t.Run("should reset the run at comments", func(t *testing.T) {
		withComment := Trivia{
			newline,
			TriviaPiece{Kind: TriviaLineComment, Text: "// note"},
			newline,
		}
		assert.False(t, withComment.ContainsBlankLine())
	})

	t.Run("should report false for a single break", func(t *testing.T) {
		assert.False(t, Trivia{newline}.ContainsBlankLine())
		assert.False(t, Trivia(nil).ContainsBlankLine())
	})
}

func TestSplitInterTokenGap(t *testing.T) {
	t.Run("should keep same-line trivia as trailing", func(t *testing.T) {
		trailing, leading := SplitInterTokenGap("  // note")
		assert.Equal(t, "  // note", trailing.Text())
		assert.Nil(t, leading)
	})

	t.Run("should hand everything from the first break to the next token", func(t *testing.T) {
		trailing, leading := SplitInterTokenGap(" // note\n    ")
		assert.Equal(t, " // note", trailing.Text())
		require.NotEmpty(t, leading)
		assert.Equal(t, TriviaNewlines, leading[0].Kind)
		assert.Equal(t, "\n    ", leading.Text())
	})

	t.Run("should handle an empty gap", func(t *testing.T) {
		trailing, leading := SplitInterTokenGap("")
		assert.Empty(t, trailing)
		assert.Empty(t, leading)
	})
}
