package runtime

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/code-payments/bucky-bank-server/pkg/solana"
)

// MaxRecentBlockhashes is how many slots a blockhash stays valid for
const MaxRecentBlockhashes = 150

var blockhashDomain = []byte("bucky_ledger_blockhash")

func blockhashForSlot(slot uint64) solana.Blockhash {
	var slotBytes [8]byte
	binary.LittleEndian.PutUint64(slotBytes[:], slot)

	h := sha256.New()
	h.Write(blockhashDomain)
	h.Write(slotBytes[:])

	var res solana.Blockhash
	copy(res[:], h.Sum(nil))
	return res
}

// recentBlockhashes tracks the blockhashes of the most recent slots. Callers
// synchronize access.
type recentBlockhashes struct {
	bySlot map[uint64]solana.Blockhash
	valid  map[solana.Blockhash]uint64
}

func newRecentBlockhashes(latestSlot uint64) *recentBlockhashes {
	r := &recentBlockhashes{
		bySlot: make(map[uint64]solana.Blockhash),
		valid:  make(map[solana.Blockhash]uint64),
	}

	start := uint64(0)
	if latestSlot > MaxRecentBlockhashes {
		start = latestSlot - MaxRecentBlockhashes
	}
	for slot := start; slot <= latestSlot; slot++ {
		r.add(slot)
	}
	return r
}

func (r *recentBlockhashes) add(slot uint64) {
	hash := blockhashForSlot(slot)
	r.bySlot[slot] = hash
	r.valid[hash] = slot

	if slot >= MaxRecentBlockhashes {
		expired := slot - MaxRecentBlockhashes
		if old, ok := r.bySlot[expired]; ok {
			delete(r.bySlot, expired)
			delete(r.valid, old)
		}
	}
}

func (r *recentBlockhashes) contains(hash solana.Blockhash) bool {
	_, ok := r.valid[hash]
	return ok
}
