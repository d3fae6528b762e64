package fill

import (
	"math/rand"
	"time"
)

// NewFillBuffer allocates the single block that every write of a job
// reuses. Zero mode leaves the allocation as-is; random mode fills it
// from a PRNG seeded once from the clock. The block is never refilled:
// repeating content is fine because the goal is consuming space or
// obfuscating old data, not entropy quality.
func NewFillBuffer(mode ContentMode, size uint64) []byte {
	buf := make([]byte, int(size))

	if mode == ModeRandom {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := range buf {
			buf[i] = byte(rng.Intn(256))
		}
	}

	return buf
}
