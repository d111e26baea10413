package lexicon

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed words.txt
var embeddedWords string

var ErrEmptyLexicon = errors.New("lexicon has no words")

// Lexicon answers whether a word may be played.
type Lexicon interface {
	IsValidWord(word string) bool
}

// WordList - an in-memory set of upper-case words. It is read-only after construction.
type WordList struct {
	words map[string]struct{}
}

func New(words ...string) *WordList {
	list := &WordList{words: make(map[string]struct{}, len(words))}
	for _, word := range words {
		list.add(word)
	}

	return list
}

// Load - reads one word per line. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (*WordList, error) {
	list := New()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}

		list.add(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	if list.Len() == 0 {
		return nil, ErrEmptyLexicon
	}

	return list, nil
}

// LoadFile - loads the word list at path, or the built-in list when path is empty.
func LoadFile(path string) (*WordList, error) {
	if path == "" {
		return Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Default - the small word list compiled into the binary.
func Default() (*WordList, error) {
	return Load(strings.NewReader(embeddedWords))
}

func (that *WordList) IsValidWord(word string) bool {
	_, ok := that.words[strings.ToUpper(strings.TrimSpace(word))]
	return ok
}

func (that *WordList) Len() int {
	return len(that.words)
}

func (that *WordList) add(word string) {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word != "" {
		that.words[word] = struct{}{}
	}
}
