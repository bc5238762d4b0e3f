package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_CholReconstructsA(t *testing.T) {
	assert := assert.New(t)
	n := 3
	A := []float64{
		4.0, 2.0, 0.0,
		2.0, 5.0, 1.0,
		0.0, 1.0, 3.0,
	}
	orig := append([]float64(nil), A...)
	assert.Equal(0, Chol(A, n))

	// reconstruct L*L' and compare to the original symmetric matrix
	LLt := Mat(n, n)
	MatMul("NT", n, n, n, 1.0, A, A, 0.0, LLt)
	for i := 0; i < n*n; i++ {
		assert.InDelta(orig[i], LLt[i], 1e-9)
	}
}

func Test_CholRejectsIndefinite(t *testing.T) {
	assert := assert.New(t)
	A := []float64{1.0, 2.0, 2.0, 1.0}
	assert.NotEqual(0, Chol(A, 2))
}

/* with a linear H, the UKF's unscented mean/covariance reconstruction
   should reproduce the EKF's gain closely -- this is the property the
   UKF kernel exists to demonstrate per filter_ukf.go's own doc comment. */
func Test_UKFMatchesEKFOnLinearModel(t *testing.T) {
	assert := assert.New(t)

	n, m := 2, 1
	x := []float64{1.0, 2.0}
	P := []float64{2.0, 0.3, 0.3, 1.5}
	H := []float64{1.0, 0.0} // observes state 0 only
	v := []float64{0.5}
	R := []float64{0.4}

	xe := append([]float64(nil), x...)
	Pe := append([]float64(nil), P...)
	xpE := Mat(n, 1)
	PpE := Mat(n, n)
	infoE := josephUpdate(xe, Pe, H, v, R, n, m, xpE, PpE)
	assert.Equal(0, infoE)

	xu := append([]float64(nil), x...)
	Pu := append([]float64(nil), P...)
	uk := &ukfKernel{alpha: 1e-3, beta: 2.0, kappa: 0.0}
	_, infoU := uk.MeasurementUpdate(xu, Pu, H, v, R, n, m)
	assert.Equal(0, infoU)

	for i := 0; i < n; i++ {
		assert.InDelta(xpE[i], xu[i], 1e-3)
	}
}

/* a realistic epoch carries a MAXSAT-wide ambiguity/iono state where only a
   handful of slots are actually tracked; every untracked slot sits at
   x=0, P[i][i]=0 and must be compacted out before the sigma-point Cholesky
   factorization, exactly as ekfKernel compacts before its Joseph update. */
func Test_UKFCompactsSparseStateBeforeCholesky(t *testing.T) {
	assert := assert.New(t)

	n, m := 4, 1
	x := []float64{1.0, 2.0, 0.0, 0.0}
	P := Zeros(n, n)
	P[0+0*n] = 2.0
	P[1+1*n] = 1.5
	P[0+1*n], P[1+0*n] = 0.3, 0.3
	H := Zeros(n, m)
	H[0] = 1.0 // observes state 0 only; untracked slots must not enter the solve
	v := []float64{0.5}
	R := []float64{0.4}

	uk := &ukfKernel{alpha: 1e-3, beta: 2.0, kappa: 0.0}
	_, info := uk.MeasurementUpdate(x, P, H, v, R, n, m)

	assert.Equal(0, info, "compacted Cholesky must not see the untracked slots' zero variance")
	assert.Equal(0.0, x[2])
	assert.Equal(0.0, x[3])
}
