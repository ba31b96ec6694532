package cpu

import (
	"math/rand/v2"
)

// Random is a source of uniformly distributed bytes for the rnd instruction.
type Random interface {
	Byte() uint8
}

type randomPcg struct {
	rng *rand.Rand
}

// NewRandom returns a pseudo-random byte source with a fixed seed.
func NewRandom(seed uint64) Random {
	return &randomPcg{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (rp *randomPcg) Byte() uint8 {
	return uint8(rp.rng.UintN(256))
}

// Sequence replays a fixed list of bytes, wrapping at the end.
// An empty Sequence always returns 0.
type Sequence struct {
	Data  []byte
	Index int
}

func (seq *Sequence) Byte() (value uint8) {
	if len(seq.Data) == 0 {
		return
	}
	value = seq.Data[seq.Index%len(seq.Data)]
	seq.Index++
	return
}
