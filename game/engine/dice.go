package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sort"
)

// NewSeed returns a high-entropy seed for a session's random source.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}

// generateMoneySquares places prizes on distinct non-start tiles.
func generateMoneySquares(rng *rand.Rand, board Board, config *GameConfig) []MoneySquare {
	candidates := board.TotalSquares - 1
	count := int(config.MoneySquareDensity * float64(candidates))
	if count < 1 {
		count = 1
	}
	if count > candidates {
		count = candidates
	}

	// tiles 1..total-1 in random order, first count of them win a prize
	tiles := rng.Perm(candidates)
	squares := make([]MoneySquare, 0, count)
	for _, t := range tiles[:count] {
		squares = append(squares, MoneySquare{
			Position: t + 1,
			Amount:   config.MoneyAmounts[rng.Intn(len(config.MoneyAmounts))],
		})
	}
	sort.Slice(squares, func(i, j int) bool {
		return squares[i].Position < squares[j].Position
	})
	return squares
}
