package domain

import "fmt"

// Token identifies one side of a two-asset pool.
type Token string

const (
	TokenA Token = "A"
	TokenB Token = "B"
)

// Valid reports whether t is one of the two pool sides.
func (t Token) Valid() bool {
	return t == TokenA || t == TokenB
}

// Opposite returns the other side of the pool. An invalid token maps to
// itself so callers that skipped validation don't silently swap sides.
func (t Token) Opposite() Token {
	switch t {
	case TokenA:
		return TokenB
	case TokenB:
		return TokenA
	}
	return t
}

// ParseToken converts a wire tag into a Token.
func ParseToken(s string) (Token, error) {
	t := Token(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown input token %q, must be one of: A, B", ErrInvalidOrder, s)
	}
	return t, nil
}
