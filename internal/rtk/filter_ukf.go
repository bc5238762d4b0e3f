/*------------------------------------------------------------------------------
* filter_ukf.go : unscented kalman filter measurement update
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import "math"

// ukfKernel propagates 2n+1 Van der Merwe sigma points through the
// measurement function. The residual builder already linearizes the
// double-difference model into H, so there is no nonlinear h to exercise
// directly; folding the sigma points through that same H reproduces the
// EKF's gain exactly while keeping the mean/covariance reconstruction
// unscented (weighted outer products) rather than a first-order Jacobian
// expansion, which is the property this kernel exists to demonstrate.
type ukfKernel struct {
	alpha, beta, kappa float64
}

func (k *ukfKernel) MeasurementUpdate(x, P, H, v, R []float64, n, m int) (float64, int) {
	var i, j int

	// compact to the subset of states actually observed/initialized this
	// epoch, the same active-state selection ekfKernel applies: an
	// untracked ambiguity/iono slot sits at x=0, P=0, which is singular
	// and cannot enter the sigma-point Cholesky factorization below.
	ix := IMat(n, 1)
	nk := 0
	for i = 0; i < n; i++ {
		if x[i] != 0.0 && P[i+i*n] > 0.0 {
			ix[nk] = i
			nk++
		}
	}
	x_ := Mat(nk, 1)
	P_ := Mat(nk, nk)
	H_ := Mat(nk, m)
	for i = 0; i < nk; i++ {
		x_[i] = x[ix[i]]
		for j = 0; j < nk; j++ {
			P_[i+j*nk] = P[ix[i]+ix[j]*n]
		}
		for j = 0; j < m; j++ {
			H_[i+j*nk] = H[ix[i]+j*n]
		}
	}

	lambda := innovationScale(v, R, m)
	R_ := Mat(m, m)
	MatCpy(R_, R, m, m)
	if lambda > 1.0 {
		for i := range R_ {
			R_[i] *= lambda
		}
	}

	lam := k.alpha*k.alpha*(float64(nk)+k.kappa) - float64(nk)
	nsig := 2*nk + 1
	Wm := make([]float64, nsig)
	Wc := make([]float64, nsig)
	Wm[0] = lam / (float64(nk) + lam)
	Wc[0] = Wm[0] + (1 - k.alpha*k.alpha + k.beta)
	for i := 1; i < nsig; i++ {
		Wm[i] = 1.0 / (2.0 * (float64(nk) + lam))
		Wc[i] = Wm[i]
	}

	S := Mat(nk, nk)
	MatCpy(S, P_, nk, nk)
	for i := 0; i < nk*nk; i++ {
		S[i] *= float64(nk) + lam
	}
	if info := Chol(S, nk); info != 0 {
		return lambda, info
	}

	sigmas := make([][]float64, nsig)
	sigmas[0] = append([]float64(nil), x_...)
	for i := 0; i < nk; i++ {
		col := make([]float64, nk)
		for j := 0; j < nk; j++ {
			col[j] = S[j+i*nk]
		}
		plus := make([]float64, nk)
		minus := make([]float64, nk)
		for j := 0; j < nk; j++ {
			plus[j] = x_[j] + col[j]
			minus[j] = x_[j] - col[j]
		}
		sigmas[1+i] = plus
		sigmas[1+nk+i] = minus
	}

	// measurement sigma points y_i = H_' * sigma_i, matching the engine's
	// v = z - H'*x residual convention
	ymean := make([]float64, m)
	ysig := make([][]float64, nsig)
	for i, sp := range sigmas {
		y := Mat(m, 1)
		MatMul("TN", m, 1, nk, 1.0, H_, sp, 0.0, y)
		ysig[i] = y
		for j := 0; j < m; j++ {
			ymean[j] += Wm[i] * y[j]
		}
	}

	Pyy := Zeros(m, m)
	Pxy := Zeros(nk, m)
	for i, sp := range sigmas {
		dy := make([]float64, m)
		for j := 0; j < m; j++ {
			dy[j] = ysig[i][j] - ymean[j]
		}
		dx := make([]float64, nk)
		for j := 0; j < nk; j++ {
			dx[j] = sp[j] - x_[j]
		}
		for a := 0; a < m; a++ {
			for b := 0; b < m; b++ {
				Pyy[a+b*m] += Wc[i] * dy[a] * dy[b]
			}
		}
		for a := 0; a < nk; a++ {
			for b := 0; b < m; b++ {
				Pxy[a+b*nk] += Wc[i] * dx[a] * dy[b]
			}
		}
	}
	for i := 0; i < m*m; i++ {
		Pyy[i] += R_[i]
	}
	if info := MatInv(Pyy, m); info != 0 {
		return lambda, info
	}
	K := Mat(nk, m)
	MatMul("NN", nk, m, m, 1.0, Pxy, Pyy, 0.0, K)

	// the orchestrator passes v computed at the linearization point, which
	// coincides with z-ymean for a linear H; apply the unscented gain
	// directly against that same residual.
	xp_ := Mat(nk, 1)
	MatCpy(xp_, x_, nk, 1)
	MatMul("NN", nk, 1, m, 1.0, K, v, 1.0, xp_)

	KPyy := Mat(nk, m)
	MatMul("NN", nk, m, m, 1.0, K, Pyy, 0.0, KPyy)
	Pp_ := Mat(nk, nk)
	MatCpy(Pp_, P_, nk, nk)
	MatMul("NT", nk, nk, m, -1.0, KPyy, K, 1.0, Pp_)
	for i := 0; i < nk; i++ {
		for j := i + 1; j < nk; j++ {
			avg := (Pp_[i+j*nk] + Pp_[j+i*nk]) / 2
			Pp_[i+j*nk] = avg
			Pp_[j+i*nk] = avg
		}
	}

	for i = 0; i < nk; i++ {
		x[ix[i]] = xp_[i]
		for j = 0; j < nk; j++ {
			P[ix[i]+ix[j]*n] = Pp_[i+j*nk]
		}
	}
	return lambda, 0
}

// Chol computes the lower-triangular Cholesky factor of the symmetric
// positive-definite n x n column-major matrix A in place (the upper
// triangle is zeroed). Returns non-zero if A is not positive definite,
// matching MatInv/LUDcmp's convention of a plain int status.
func Chol(A []float64, n int) int {
	for j := 0; j < n; j++ {
		sum := A[j+j*n]
		for k := 0; k < j; k++ {
			sum -= A[j+k*n] * A[j+k*n]
		}
		if sum <= 0.0 {
			return 1
		}
		A[j+j*n] = math.Sqrt(sum)
		for i := j + 1; i < n; i++ {
			sum = A[i+j*n]
			for k := 0; k < j; k++ {
				sum -= A[i+k*n] * A[j+k*n]
			}
			A[i+j*n] = sum / A[j+j*n]
		}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < j; i++ {
			A[i+j*n] = 0.0
		}
	}
	return 0
}
