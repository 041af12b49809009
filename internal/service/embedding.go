package service

import (
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding returns a simple deterministic embedding for the given
// text: total length, vowel count and word count. Good enough to order
// catalog recipes by rough textual similarity without an embedding API.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		}
	}
	words := float32(len(strings.Fields(text)))
	return pgvector.NewVector([]float32{float32(len(text)), vowels, words})
}
