// Package input parses and formats the comma-separated number lists accepted by the visualizer.
package input

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultMaxValues is the default limit on the number of values in a single list.
const DefaultMaxValues = 512

var (
	ErrEmptyInput    = errors.New("no numbers provided")
	ErrInvalidToken  = errors.New("invalid number")
	ErrTooManyValues = errors.New("too many numbers")
)

// InvalidTokenError describes the first token which could not be parsed as a finite number.
type InvalidTokenError struct {
	Position int
	Token    string
}

func (e *InvalidTokenError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: empty value at position %d", ErrInvalidToken, e.Position+1)
	}
	return fmt.Sprintf("%s: %q at position %d", ErrInvalidToken, e.Token, e.Position+1)
}

func (e *InvalidTokenError) Unwrap() error {
	return ErrInvalidToken
}

// Parse splits raw on commas and parses every trimmed token as a finite number.
//
// Blank input returns [ErrEmptyInput]. An empty or non-numeric token, a hex or underscore separated literal, or one which parses to NaN or an infinity, returns an [*InvalidTokenError]. A maxValues of zero or less means no limit.
func Parse(raw string, maxValues int) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	tokens := strings.Split(raw, ",")
	if maxValues > 0 && len(tokens) > maxValues {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyValues, len(tokens), maxValues)
	}

	out := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, &InvalidTokenError{Position: i}
		}
		if !plainDecimal(tok) {
			return nil, &InvalidTokenError{Position: i, Token: tok}
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidTokenError{Position: i, Token: tok}
		}
		out = append(out, v)
	}
	return out, nil
}

// plainDecimal rejects the literal forms ParseFloat accepts beyond ordinary decimal notation: digit separators and hex floats.
func plainDecimal(tok string) bool {
	if strings.Contains(tok, "_") {
		return false
	}
	unsigned := strings.TrimLeft(tok, "+-")
	return !strings.HasPrefix(unsigned, "0x") && !strings.HasPrefix(unsigned, "0X")
}

// Format renders numbers as a ", " separated list.
//
// Each value uses its shortest exact form: plain decimal notation, or exponent notation like "1e+300" when the magnitude is at least 1e21 or below 1e-6. Negative zero prints as "0".
func Format(numbers []float64) string {
	parts := make([]string, len(numbers))
	for i, v := range numbers {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs < 1e21 && abs >= 1e-6 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	// single digit exponents are printed without padding: 1e-7, not 1e-07
	s = strings.Replace(s, "e-0", "e-", 1)
	return strings.Replace(s, "e+0", "e+", 1)
}

// Random returns n integers between -99 and 99, for example input.
func Random(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(gofakeit.Number(-99, 99))
	}
	return out
}
