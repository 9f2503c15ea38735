package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring consistently hashes keys onto a fixed number of stripes. Each stripe
// owns several virtual points on the ring so keys spread evenly.
type ring struct {
	points *treemap.Map // int64 hash -> stripe index

	// first is the stripe owning the lowest point, where keys hashing past
	// the last point wrap around to
	first int
}

func newRing(stripes, pointsPerStripe uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)

	var seed [12]byte
	for stripe := uint(0); stripe < stripes; stripe++ {
		binary.LittleEndian.PutUint32(seed[:4], uint32(stripe))
		for point := uint(0); point < pointsPerStripe; point++ {
			binary.LittleEndian.PutUint64(seed[4:], uint64(point))
			points.Put(hash(seed[:]), int(stripe))
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// stripe returns the stripe owning the first point at or after key's hash
func (r *ring) stripe(key []byte) int {
	if _, stripe := r.points.Ceiling(hash(key)); stripe != nil {
		return stripe.(int)
	}
	return r.first
}

func hash(data []byte) int64 {
	h, _ := murmur3.Sum128(data)
	return int64(h)
}
