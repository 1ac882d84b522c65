package identity

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	length   = 8
)

// New returns an 8-character id drawn from the 62-symbol alphanumeric
// alphabet. Uniqueness is probabilistic; nothing checks against existing ids.
func New() string {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		// gonanoid only fails when the platform RNG is broken.
		panic(err)
	}
	return id
}
