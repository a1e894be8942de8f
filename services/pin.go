package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	pinMin = 100000
	pinMax = 999999

	DefaultPinAttempts = 20
)

// PinChecker reports whether a pin is held by a live session.
type PinChecker interface {
	PinInUse(ctx context.Context, pin string) (bool, error)
}

// PinGenerator draws 6-digit join codes until it finds one no live session
// holds, giving up after maxAttempts.
type PinGenerator struct {
	checker     PinChecker
	maxAttempts int
	intn        func(n int64) (int64, error)
}

func NewPinGenerator(checker PinChecker, maxAttempts int) *PinGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultPinAttempts
	}
	return &PinGenerator{checker: checker, maxAttempts: maxAttempts, intn: cryptoIntn}
}

func cryptoIntn(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

func (g *PinGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		n, err := g.intn(pinMax - pinMin + 1)
		if err != nil {
			return "", InternalError(err, "failed to generate pin")
		}
		pin := strconv.FormatInt(pinMin+n, 10)

		inUse, err := g.checker.PinInUse(ctx, pin)
		if err != nil {
			return "", InternalError(err, "failed to check pin")
		}
		if !inUse {
			return pin, nil
		}
	}
	return "", ResourceExhausted("no free pin after %d attempts", g.maxAttempts)
}
