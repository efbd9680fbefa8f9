package dataset

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TextConfig controls how documents are split into words
type TextConfig struct {
	MinWordLength     int  `json:"min_word_length" yaml:"min_word_length"`
	MaxWordLength     int  `json:"max_word_length" yaml:"max_word_length"`
	CaseSensitive     bool `json:"case_sensitive" yaml:"case_sensitive"`
	MinWordCount      int  `json:"min_word_count" yaml:"min_word_count"`
	MaxVocabularySize int  `json:"max_vocabulary_size" yaml:"max_vocabulary_size"`
}

// DefaultTextConfig returns default word extraction settings
func DefaultTextConfig() *TextConfig {
	return &TextConfig{
		MinWordLength:     3,
		MaxWordLength:     20,
		CaseSensitive:     false,
		MinWordCount:      2,
		MaxVocabularySize: 10000,
	}
}

// Vectorizer turns documents into binary word-presence vectors over a fixed
// vocabulary
type Vectorizer struct {
	config     *TextConfig
	wordRegex  *regexp.Regexp
	vocabulary []string
	index      map[string]int
}

// NewVectorizer creates an unfitted vectorizer
func NewVectorizer(config *TextConfig) *Vectorizer {
	if config == nil {
		config = DefaultTextConfig()
	}

	return &Vectorizer{
		config: config,
		wordRegex: regexp.MustCompile(`\b[a-zA-Z]{` +
			fmt.Sprintf("%d,%d", config.MinWordLength, config.MaxWordLength) + `}\b`),
	}
}

// Words extracts distinct words from text, preserving order
func (v *Vectorizer) Words(text string) []string {
	if !v.config.CaseSensitive {
		text = strings.ToLower(text)
	}

	matches := v.wordRegex.FindAllString(text, -1)

	seen := make(map[string]bool)
	var words []string
	for _, word := range matches {
		if !seen[word] {
			seen[word] = true
			words = append(words, word)
		}
	}
	return words
}

// Fit builds the vocabulary from the words appearing in at least
// MinWordCount documents, most frequent first
func (v *Vectorizer) Fit(docs []string) {
	df := make(map[string]int)
	for _, doc := range docs {
		for _, word := range v.Words(doc) {
			df[word]++
		}
	}

	var vocabulary []string
	for word, count := range df {
		if count >= v.config.MinWordCount {
			vocabulary = append(vocabulary, word)
		}
	}
	sort.Slice(vocabulary, func(i, j int) bool {
		if df[vocabulary[i]] != df[vocabulary[j]] {
			return df[vocabulary[i]] > df[vocabulary[j]]
		}
		return vocabulary[i] < vocabulary[j]
	})

	if v.config.MaxVocabularySize > 0 && len(vocabulary) > v.config.MaxVocabularySize {
		vocabulary = vocabulary[:v.config.MaxVocabularySize]
	}

	v.vocabulary = vocabulary
	v.index = make(map[string]int, len(vocabulary))
	for i, word := range vocabulary {
		v.index[word] = i
	}
}

// Transform maps each document to a 0/1 vector of vocabulary word presence
func (v *Vectorizer) Transform(docs []string) [][]int {
	out := make([][]int, len(docs))
	for i, doc := range docs {
		vec := make([]int, len(v.vocabulary))
		for _, word := range v.Words(doc) {
			if j, ok := v.index[word]; ok {
				vec[j] = 1
			}
		}
		out[i] = vec
	}
	return out
}

// Vocabulary returns the fitted words in vector order
func (v *Vectorizer) Vocabulary() []string {
	out := make([]string, len(v.vocabulary))
	copy(out, v.vocabulary)
	return out
}
