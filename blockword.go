package gcgcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultBlockWords are substrings a generated share code must not contain.
var DefaultBlockWords = []string{"64", "89", "ntr"}

// blockWord matches a word case-insensitively, allowing any run of '+'
// between its characters.
type blockWord struct {
	word string
	re   *regexp.Regexp
}

func compileBlockWord(word string) (blockWord, error) {
	if word == "" {
		return blockWord{}, errors.New("gcgcode: empty block word")
	}
	parts := make([]string, 0, len(word))
	for _, r := range word {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	re, err := regexp.Compile(`(?i)` + strings.Join(parts, `\+*`))
	if err != nil {
		return blockWord{}, fmt.Errorf("gcgcode: block word %q: %w", word, err)
	}
	return blockWord{word: word, re: re}, nil
}

// Blocked returns the first block word found in s, if any.
func (c *Codec) Blocked(s string) (string, bool) {
	for _, w := range c.blockWords {
		if w.re.MatchString(s) {
			return w.word, true
		}
	}
	return "", false
}
