package judge

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Offline judges words against an in-memory wordlist (e.g. ENABLE). Words are
// held uppercase; lookups are case-insensitive. Blanks must be resolved to
// concrete letters before judging.
type Offline struct {
	words map[string]struct{}
}

// NewOffline wraps an existing word set. Words are normalized on insert.
func NewOffline(words []string) *Offline {
	j := &Offline{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if n := normalizeWord(w); n != "" {
			j.words[n] = struct{}{}
		}
	}
	return j
}

// NewOfflineFromPath loads a wordlist file, one word per line. Blank lines are
// skipped.
func NewOfflineFromPath(path string) (*Offline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()

	j := &Offline{words: make(map[string]struct{})}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if w := normalizeWord(scanner.Text()); w != "" {
			j.words[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist: %w", err)
	}
	log.Info().Str("path", path).Int("words", len(j.words)).Msg("wordlist loaded")
	return j, nil
}

// normalizeWord uppercases and keeps only A-Z.
func normalizeWord(word string) string {
	var sb strings.Builder
	for _, ch := range strings.ToUpper(strings.TrimSpace(word)) {
		if ch >= 'A' && ch <= 'Z' {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// Contains reports whether the word is in the wordlist. A word still carrying
// the blank marker '?' is invalid by contract.
func (j *Offline) Contains(word string) bool {
	if word == "" || strings.Contains(word, "?") {
		return false
	}
	_, ok := j.words[normalizeWord(word)]
	return ok
}

// Count returns the number of loaded words.
func (j *Offline) Count() int {
	return len(j.words)
}

// Judge implements the Judge interface. The language argument is ignored; an
// offline list is monolingual by construction.
func (j *Offline) Judge(_ context.Context, words []string, _ string) (Verdict, error) {
	v := Verdict{AllValid: true}
	for _, w := range words {
		wv := WordVerdict{Word: w, Valid: j.Contains(w)}
		if !wv.Valid {
			wv.Reason = fmt.Sprintf("word_not_in_dict:%s", w)
			v.AllValid = false
		}
		v.Results = append(v.Results, wv)
	}
	return v, nil
}
