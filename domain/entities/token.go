package entities

import "strconv"

// Token is a value captured from a configuration line. Present is false when
// no line carried the value, which keeps "absent" apart from a genuine value
// that happens to equal a default.
type Token struct {
	Value   string
	Present bool
}

// Captured returns a present Token holding value.
func Captured(value string) Token {
	return Token{Value: value, Present: true}
}

// Or returns the captured value, or def when the token is absent.
func (t Token) Or(def string) string {
	if !t.Present {
		return def
	}
	return t.Value
}

// Int parses the token as a positive integer. def is returned when the token
// is absent, not numeric, or lower than 1.
func (t Token) Int(def int) int {
	if !t.Present {
		return def
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil || n < 1 {
		return def
	}
	return n
}
