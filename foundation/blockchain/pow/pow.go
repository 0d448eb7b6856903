// Package pow implements the proof of work puzzle used to pace block
// production. The same predicate is used by the miner to check its guesses
// and by the chain validator to check received chains.
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultDifficulty is the number of leading zero hex characters a solution
// hash must have. It is shared by block production and chain validation.
const DefaultDifficulty = 4

// MaxDifficulty is the number of hex characters in a SHA-256 digest.
const MaxDifficulty = sha256.Size * 2

// ErrExhausted is returned when every proof value has been tried without
// finding a solution.
var ErrExhausted = errors.New("proof space exhausted")

// ErrDifficulty is returned when the difficulty can't be satisfied by a
// SHA-256 hex digest.
var ErrDifficulty = errors.New("difficulty out of range")

// =============================================================================

// IsValid reports whether proof solves the puzzle posed by previousProof. The
// hash is taken over the decimal concatenation of both values.
func IsValid(difficulty uint16, previousProof uint64, proof uint64) bool {
	if int(difficulty) > MaxDifficulty {
		return false
	}

	return isHashSolved(difficulty, Hash(previousProof, proof))
}

// Hash returns the lowercase hex encoded SHA-256 of the decimal
// concatenation of the previous proof and the candidate proof.
func Hash(previousProof uint64, proof uint64) string {
	guess := make([]byte, 0, 40)
	guess = strconv.AppendUint(guess, previousProof, 10)
	guess = strconv.AppendUint(guess, proof, 10)

	sum := sha256.Sum256(guess)
	return hex.EncodeToString(sum[:])
}

// Solve searches for the smallest proof, starting at zero, that satisfies
// IsValid for the previous proof. The search can be cancelled through the
// context and reports its progress through the event handler.
func Solve(ctx context.Context, difficulty uint16, previousProof uint64, ev func(v string, args ...any)) (uint64, error) {
	if int(difficulty) > MaxDifficulty {
		return 0, ErrDifficulty
	}

	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("pow: Solve: MINING: started: prevProof[%d]: difficulty[%d]", previousProof, difficulty)
	defer ev("pow: Solve: MINING: completed")

	var attempts uint64
	for proof := uint64(0); ; proof++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("pow: Solve: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if attempts%1_024 == 0 && ctx.Err() != nil {
			ev("pow: Solve: MINING: CANCELLED")
			return 0, ctx.Err()
		}

		if IsValid(difficulty, previousProof, proof) {
			ev("pow: Solve: MINING: SOLVED: proof[%d]: attempts[%d]", proof, attempts)
			return proof, nil
		}

		if proof == math.MaxUint64 {
			return 0, ErrExhausted
		}
	}
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading 0's.
func isHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != MaxDifficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}
