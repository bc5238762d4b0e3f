package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/* josephUpdate must leave P symmetric (within float round-off) regardless
   of the gain computed, the "symmetric-P" testable property from §8. */
func Test_JosephUpdateSymmetricP(t *testing.T) {
	assert := assert.New(t)

	n, m := 3, 2
	x := []float64{1.0, 2.0, 3.0}
	P := []float64{
		4.0, 0.5, 0.2,
		0.5, 3.0, 0.1,
		0.2, 0.1, 2.0,
	}
	H := []float64{1.0, 0.0, 0.0, 1.0, 0.0, 0.0} // 3x2, col-major
	v := []float64{0.3, -0.2}
	R := []float64{0.5, 0.0, 0.0, 0.3}

	xp := Mat(n, 1)
	Pp := Mat(n, n)
	info := josephUpdate(x, P, H, v, R, n, m, xp, Pp)
	assert.Equal(0, info)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			assert.InDelta(Pp[i+j*n], Pp[j+i*n], 1e-9)
		}
	}
	for i := 0; i < n; i++ {
		assert.True(Pp[i+i*n] >= 0.0, "diagonal must stay non-negative")
	}
}

/* an innovation at or below its modeled variance (here v=0, so v'R^-1v/m
   is 0) must not inflate R: the scale is clamped at 1. */
func Test_InnovationScaleQuietEpoch(t *testing.T) {
	assert := assert.New(t)
	v := []float64{0.0, 0.0}
	R := []float64{1.0, 0.0, 0.0, 1.0}
	lambda := innovationScale(v, R, 2)
	assert.Equal(1.0, lambda)
}

func Test_InnovationScaleHotEpoch(t *testing.T) {
	assert := assert.New(t)
	v := []float64{3.0, 3.0}
	R := []float64{1.0, 0.0, 0.0, 1.0}
	lambda := innovationScale(v, R, 2)
	assert.True(lambda > 1.0, "oversized residuals must inflate lambda above 1")
}

/* NewFilterKernel must honor PrcOpt.FilterType. */
func Test_NewFilterKernelSelectsByOption(t *testing.T) {
	assert := assert.New(t)

	opt := &PrcOpt{FilterType: FILTER_EKF}
	_, ok := NewFilterKernel(opt).(*ekfKernel)
	assert.True(ok)

	opt.FilterType = FILTER_UKF
	_, ok = NewFilterKernel(opt).(*ukfKernel)
	assert.True(ok)

	opt.FilterType = FILTER_PF
	_, ok = NewFilterKernel(opt).(*pfKernel)
	assert.True(ok)
}
