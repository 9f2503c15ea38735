package sync

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)
	other := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := []byte(fmt.Sprintf("key%d", i))
		stripe := r.stripe(key)
		assert.True(t, stripe >= 0 && stripe < 64)

		for j := 0; j < 16; j++ {
			assert.Equal(t, stripe, r.stripe(key))
		}
		assert.Equal(t, stripe, other.stripe(key))
	}
}

func TestRing_Distribution(t *testing.T) {
	stripes := 5
	iterations := 500000
	marginOfError := 0.1
	expected := float64(iterations / stripes)

	r := newRing(uint(stripes), 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.stripe([]byte(fmt.Sprintf("key%d", i)))]++
	}

	assert.Len(t, hits, stripes)
	for stripe, count := range hits {
		assert.True(t, math.Abs(float64(count)-expected) <= marginOfError*expected, "stripe %d got %d", stripe, count)
	}
}

func TestRing_SingleStripe(t *testing.T) {
	r := newRing(1, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.stripe([]byte(fmt.Sprintf("key%d", i))))
	}
}
