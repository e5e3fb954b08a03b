package postgresadapter

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// SystemClock implements ports.Clock using wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator implements ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// SystemRandom implements ports.RandomSource on the process-wide PRNG.
type SystemRandom struct{}

func (SystemRandom) Intn(n int) int {
	return rand.IntN(n)
}
