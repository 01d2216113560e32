package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisibility(t *testing.T) {
	t.Run("should parse every access level", func(t *testing.T) {
		levels := []string{"private", "fileprivate", "internal", "package", "public", "open"}

		for _, level := range levels {
			v, err := ParseVisibility(level)
			require.NoError(t, err, "Should parse access level %q", level)
			assert.Equal(t, Visibility(level), v)
			assert.True(t, v.IsValid())
		}
	})

	t.Run("should resolve setter-scoped forms to their base level", func(t *testing.T) {
		v, err := ParseVisibility("private(set)")
		require.NoError(t, err)
		assert.Equal(t, VisibilityPrivate, v)

		v, err = ParseVisibility("public(set)")
		require.NoError(t, err)
		assert.Equal(t, VisibilityPublic, v)
	})

	t.Run("should reject keywords that are not access modifiers", func(t *testing.T) {
		for _, keyword := range []string{"final", "static", "", "Public", "privatee"} {
			_, err := ParseVisibility(keyword)
			require.Error(t, err, "Should reject %q", keyword)
			assert.Contains(t, err.Error(), "not an access modifier")
		}
	})
}

func TestIsVisibilityKeyword(t *testing.T) {
	t.Run("should recognize plain and setter-scoped modifiers", func(t *testing.T) {
		assert.True(t, IsVisibilityKeyword("public"))
		assert.True(t, IsVisibilityKeyword("fileprivate"))
		assert.True(t, IsVisibilityKeyword("private(set)"))
		assert.False(t, IsVisibilityKeyword("mutating"))
		assert.False(t, IsVisibilityKeyword(""))
	})
}

func TestResolveVisibility(t *testing.T) {
	t.Run("should return the explicit access modifier", func(t *testing.T) {
		assert.Equal(t, VisibilityPublic, ResolveVisibility([]string{"public"}))
		assert.Equal(t, VisibilityPrivate, ResolveVisibility([]string{"final", "private"}))
	})

	t.Run("should skip setter-scoped modifiers", func(t *testing.T) {
		// private(set) restricts the setter only, the declaration itself
		// keeps the default level.
		assert.Equal(t, VisibilityInternal, ResolveVisibility([]string{"private(set)"}))
		assert.Equal(t, VisibilityPublic, ResolveVisibility([]string{"private(set)", "public"}))
	})

	t.Run("should default to internal without an access modifier", func(t *testing.T) {
		assert.Equal(t, VisibilityInternal, ResolveVisibility(nil))
		assert.Equal(t, VisibilityInternal, ResolveVisibility([]string{"static", "override"}))
	})
}

func TestVisibilityOrdering(t *testing.T) {
	t.Run("should order levels from private to open", func(t *testing.T) {
		ladder := []Visibility{
			VisibilityPrivate,
			VisibilityFilePrivate,
			VisibilityInternal,
			VisibilityPackage,
			VisibilityPublic,
			VisibilityOpen,
		}

		for i := 1; i < len(ladder); i++ {
			assert.Greater(t, ladder[i].Ordinal(), ladder[i-1].Ordinal(),
				"%s should be more permissive than %s", ladder[i], ladder[i-1])
		}
	})

	t.Run("should compare levels with AtLeast", func(t *testing.T) {
		assert.True(t, VisibilityPublic.AtLeast(VisibilityInternal))
		assert.True(t, VisibilityInternal.AtLeast(VisibilityInternal))
		assert.False(t, VisibilityFilePrivate.AtLeast(VisibilityInternal))
	})

	t.Run("should rank unknown levels below private", func(t *testing.T) {
		unknown := Visibility("bogus")
		assert.Equal(t, -1, unknown.Ordinal())
		assert.False(t, unknown.IsValid())
		assert.False(t, unknown.AtLeast(VisibilityPrivate))
	})
}
