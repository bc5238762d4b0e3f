package rtk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

/* Lambda() round-trip: float ambiguities close to an integer vector should
   resolve to that exact vector as the best candidate, with the second-best
   candidate farther away (ratio > 1). */
func Test_LambdaRoundTrip(t *testing.T) {
	assert := assert.New(t)

	n, m := 4, 2
	truth := []float64{3, -2, 5, 0}
	a := make([]float64, n)
	for i := range a {
		a[i] = truth[i] + 0.03*float64(i%2*2-1)
	}
	Q := Eye(n)
	for i := 0; i < n; i++ {
		Q[i+i*n] = 0.01
	}

	F := Mat(n, m)
	s := Mat(m, 1)
	info := Lambda(n, m, a, Q, F, s)
	assert.Equal(0, info)

	for i := 0; i < n; i++ {
		assert.InDelta(truth[i], F[i], 1e-9)
	}
	assert.True(s[1] >= s[0], "second candidate must not be better than the best")
}

func Test_LambdaRejectsBadDims(t *testing.T) {
	assert := assert.New(t)
	F := Mat(1, 1)
	s := Mat(1, 1)
	assert.Equal(-1, Lambda(0, 1, nil, nil, F, s))
	assert.Equal(-1, Lambda(1, 0, nil, nil, F, s))
}

/* SGN/ROUND_F are the small helpers the reduction/search routines lean on. */
func Test_RoundAndSign(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1.0, SGN(2.5))
	assert.Equal(-1.0, SGN(-0.1))
	assert.Equal(3.0, ROUND_F(2.6))
	assert.Equal(-3.0, ROUND_F(-2.6))
	assert.Equal(math.Floor(2.4)+1, ROUND_F(2.6))
}
