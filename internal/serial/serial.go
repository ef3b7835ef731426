// Package serial issues human-readable defect identifiers of the form PREFIX-YEAR-NNNN.
package serial

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultPrefix = "BUG"

var ErrMalformed = errors.New("malformed serial number")

// Counter hands out strictly increasing sequence values per prefix and year.
type Counter interface {
	Next(ctx context.Context, prefix string, year int) (int64, error)
}

type Generator struct {
	prefix  string
	counter Counter
	now     func() time.Time
}

func New(prefix string, counter Counter) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix, counter: counter, now: time.Now}
}

// WithClock replaces the time source used to pick the year.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) Prefix() string { return g.prefix }

func (g *Generator) Next(ctx context.Context) (string, error) {
	year := g.now().UTC().Year()
	seq, err := g.counter.Next(ctx, g.prefix, year)
	if err != nil {
		return "", fmt.Errorf("serial counter: %w", err)
	}
	return Format(g.prefix, year, seq), nil
}

// Format pads the sequence to four digits; larger sequences keep all their digits.
func Format(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

func Parse(s string) (prefix string, year int, seq int64, err error) {
	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	n := len(parts)
	prefix = strings.Join(parts[:n-2], "-")
	if prefix == "" {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if year, err = strconv.Atoi(parts[n-2]); err != nil || len(parts[n-2]) != 4 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if seq, err = strconv.ParseInt(parts[n-1], 10, 64); err != nil || seq < 1 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return prefix, year, seq, nil
}
