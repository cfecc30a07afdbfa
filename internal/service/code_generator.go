// Package service holds the pieces of business logic that sit between
// handlers and repositories: identifier generation and event publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Exister is the single persistence probe the generators need.  It is
// satisfied by repository.RequisitionRepo.  The pre-check only reduces
// retry cost; the unique indexes on the identifier columns remain the
// real uniqueness guarantee, so callers must treat a duplicate-key
// insert as a collision and regenerate.
type Exister interface {
	ExistsWithValue(ctx context.Context, column, value string) (bool, error)
}

// ErrGeneration is returned when a generator hits the attempt cap
// without finding a free value.  At the identifier space sizes in use
// this only happens under a broken RNG or a pathological data set, and
// it surfaces as a server error.
var ErrGeneration = errors.New("identifier generation exhausted retries")

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 10
	maxAttempts  = 50
)

// numberRanges are the candidate ranges for formatted numbers, tried
// narrowest first.  A single collision escalates to the next range; the
// widest range keeps drawing until the attempt cap.
var numberRanges = [...]struct{ lo, hi int }{
	{1000, 9999},
	{10000, 99999},
	{100000, 999999},
}

// CodeGenerator produces the two public-facing requisition identifiers
// with a bounded collision-retry loop against the store.
type CodeGenerator struct {
	store Exister
	intn  func(n int) int
}

// NewCodeGenerator returns a generator probing the given store.
func NewCodeGenerator(store Exister) *CodeGenerator {
	return &CodeGenerator{store: store, intn: rand.IntN}
}

// NewPublicCode draws 10-character [A-Z0-9] candidates until one is
// free in requisicoes.codigo_publico.  A store failure aborts
// immediately; exhausting the attempt cap returns ErrGeneration.
func (g *CodeGenerator) NewPublicCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeAlphabet[g.intn(len(codeAlphabet))]
		}
		candidate := string(buf)
		exists, err := g.store.ExistsWithValue(ctx, "codigo_publico", candidate)
		if err != nil {
			return "", fmt.Errorf("generate codigo_publico: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrGeneration
}

// NewFormattedNumber draws "<n>/<year>" candidates, starting in the
// 4-digit range and widening by one digit after each collision until
// the 6-digit range, which keeps retrying up to the attempt cap.  The
// single-collision escalation mirrors the behavior this service
// inherited; it keeps the visible numbers short without ever scanning
// a range exhaustively.
func (g *CodeGenerator) NewFormattedNumber(ctx context.Context, year int) (string, error) {
	rangeIdx := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		r := numberRanges[rangeIdx]
		n := r.lo + g.intn(r.hi-r.lo+1)
		candidate := fmt.Sprintf("%d/%d", n, year)
		exists, err := g.store.ExistsWithValue(ctx, "numero_formatado", candidate)
		if err != nil {
			return "", fmt.Errorf("generate numero_formatado: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		if rangeIdx < len(numberRanges)-1 {
			rangeIdx++
		}
	}
	return "", ErrGeneration
}
