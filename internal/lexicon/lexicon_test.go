package lexicon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordList_IsValidWord(t *testing.T) {
	t.Run("Lookup ignores case and surrounding spaces", func(t *testing.T) {
		// Given: a word list with CAT
		list := New("cat")

		// When: checking different spellings
		// Then: they all match and other words don't
		assert.True(t, list.IsValidWord("CAT"))
		assert.True(t, list.IsValidWord(" cat "))
		assert.False(t, list.IsValidWord("CATS"))
	})

	t.Run("Load skips comments and blank lines", func(t *testing.T) {
		// Given: a word list source with noise
		src := "# header\n\ncat\n  dog  \n"

		// When: loading it
		list, err := Load(strings.NewReader(src))

		// Then: only the two words are present
		require.NoError(t, err)
		assert.Equal(t, 2, list.Len())
		assert.True(t, list.IsValidWord("DOG"))
	})

	t.Run("Load fails on an empty source", func(t *testing.T) {
		// When: loading nothing
		_, err := Load(strings.NewReader("# only a comment\n"))

		// Then: it fails
		assert.ErrorIs(t, err, ErrEmptyLexicon)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("Empty path falls back to the built-in list", func(t *testing.T) {
		// When: loading without a path
		list, err := LoadFile("")

		// Then: the built-in list is used
		require.NoError(t, err)
		assert.True(t, list.IsValidWord("CAT"))
		assert.True(t, list.IsValidWord("QI"))
	})

	t.Run("Reads a list from disk", func(t *testing.T) {
		// Given: a word list file
		path := filepath.Join(t.TempDir(), "words.txt")
		require.NoError(t, os.WriteFile(path, []byte("zyzzyva\n"), 0o600))

		// When: loading it
		list, err := LoadFile(path)

		// Then: only its words are valid
		require.NoError(t, err)
		assert.True(t, list.IsValidWord("ZYZZYVA"))
		assert.False(t, list.IsValidWord("CAT"))
	})
}
