package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_GaussianSampleDeterministic(t *testing.T) {
	assert := assert.New(t)
	k1 := newPFKernel(10)
	k2 := newPFKernel(10)
	for i := 0; i < 20; i++ {
		assert.Equal(k1.gaussianSample(), k2.gaussianSample(),
			"same starting state must produce the same sequence")
	}
}

func Test_GaussianSampleDoesNotTouchGlobalState(t *testing.T) {
	assert := assert.New(t)
	k1 := newPFKernel(5)
	_ = k1.gaussianSample()
	state1 := k1.rngState

	k2 := newPFKernel(5)
	s := k2.gaussianSample()
	assert.NotEqual(0.0, s)
	assert.Equal(state1, k1.rngState, "advancing k2 must not perturb k1's state")
}

func Test_PFKernelSeedsAroundMean(t *testing.T) {
	assert := assert.New(t)
	k := newPFKernel(500)
	n := 5
	x := make([]float64, n)
	x[0], x[1], x[2] = 10.0, 20.0, 30.0
	P := Zeros(n, n)
	P[0], P[1+1*n], P[2+2*n] = 1.0, 1.0, 1.0

	k.seedSwarm(x, P)
	assert.True(k.seeded)
	assert.Len(k.particles, 500)

	var mean [3]float64
	for _, p := range k.particles {
		for j := 0; j < 3; j++ {
			mean[j] += p[j] / float64(len(k.particles))
		}
	}
	assert.InDelta(x[0], mean[0], 0.3)
	assert.InDelta(x[1], mean[1], 0.3)
	assert.InDelta(x[2], mean[2], 0.3)
}

/* a tight measurement on position should pull the swarm's weighted mean
   toward the observed value and shrink the position variance. */
func Test_PFKernelMeasurementUpdateShrinksVariance(t *testing.T) {
	assert := assert.New(t)
	n, m := 5, 1
	x := make([]float64, n)
	P := Zeros(n, n)
	P[0], P[1+1*n], P[2+2*n] = 4.0, 4.0, 4.0
	P[3+3*n], P[4+4*n] = 1.0, 1.0

	H := Mat(n, m)
	H[0] = 1.0 // observes x[0]
	v := []float64{1.0}
	R := []float64{0.01}

	k := newPFKernel(300)
	_, info := k.MeasurementUpdate(x, P, H, v, R, n, m)
	assert.Equal(0, info)
	assert.True(P[0+0*n] < 4.0, "a tight observation should shrink position variance")
}
