/*------------------------------------------------------------------------------
* filter_ekf.go : extended kalman filter measurement update
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

// ekfKernel is the extended kalman filter: linear gain from the Jacobian H,
// Joseph-form covariance update to guarantee symmetry and non-negative
// diagonals under round-off, and an adaptive scaling of R by the normalized
// innovation statistic when the epoch's residuals collectively exceed their
// modeled variance.
type ekfKernel struct{}

func (k *ekfKernel) MeasurementUpdate(x, P, H, v, R []float64, n, m int) (float64, int) {
	var i, j int

	// compact to the subset of states actually observed/initialized this
	// epoch; an untracked ambiguity/iono slot sits at x=0, P=0 and must not
	// enter the gain solve.
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
		for i = 0; i < m*m; i++ {
			R_[i] *= lambda
		}
	}

	xp_ := Mat(nk, 1)
	Pp_ := Mat(nk, nk)
	info := josephUpdate(x_, P_, H_, v, R_, nk, m, xp_, Pp_)
	if info != 0 {
		return lambda, info
	}
	for i = 0; i < nk; i++ {
		x[ix[i]] = xp_[i]
		for j = 0; j < nk; j++ {
			P[ix[i]+ix[j]*n] = Pp_[i+j*nk]
		}
	}
	return lambda, 0
}

// josephUpdate computes xp=x+K*v and Pp=(I-K*H')*P*(I-K*H')'+K*R*K', the
// numerically robust form that stays symmetric and positive semi-definite
// under floating-point round-off, unlike the collapsed Pp=(I-K*H')*P.
func josephUpdate(x, P, H, v, R []float64, n, m int, xp, Pp []float64) int {
	F := Mat(n, m)
	Q := Mat(m, m)
	K := Mat(n, m)
	IKH := Eye(n)
	KR := Mat(n, m)
	KRKt := Mat(n, n)
	tmp := Mat(n, n)

	MatCpy(Q, R, m, m)
	MatCpy(xp, x, n, 1)
	MatMul("NN", n, m, n, 1.0, P, H, 0.0, F) /* F=P*H */
	MatMul("TN", m, m, n, 1.0, H, F, 1.0, Q) /* Q=H'*P*H+R */
	if info := MatInv(Q, m); info != 0 {
		return info
	}
	MatMul("NN", n, m, m, 1.0, F, Q, 0.0, K)  /* K=P*H*Q^-1 */
	MatMul("NN", n, 1, m, 1.0, K, v, 1.0, xp) /* xp=x+K*v */

	MatMul("NT", n, n, m, -1.0, K, H, 1.0, IKH) /* IKH=I-K*H' */
	MatMul("NN", n, n, n, 1.0, IKH, P, 0.0, tmp)
	MatMul("NT", n, n, n, 1.0, tmp, IKH, 0.0, Pp) /* Pp=(I-KH')P(I-KH')' */

	MatMul("NN", n, m, m, 1.0, K, R, 0.0, KR)  /* KR=K*R */
	MatMul("NT", n, n, m, 1.0, KR, K, 0.0, KRKt) /* KRKt=K*R*K' */
	for i := 0; i < n*n; i++ {
		Pp[i] += KRKt[i]
	}
	return 0
}

// innovationScale computes the normalized chi-square statistic v'R^-1v/m
// and returns it clamped below at 1 so a quiet epoch never shrinks R.
func innovationScale(v, R []float64, m int) float64 {
	if m <= 0 {
		return 1.0
	}
	Rinv := Mat(m, m)
	MatCpy(Rinv, R, m, m)
	if MatInv(Rinv, m) != 0 {
		return 1.0
	}
	Rv := Mat(m, 1)
	MatMul("NN", m, 1, m, 1.0, Rinv, v, 0.0, Rv)
	stat := Dot(v, Rv, m) / float64(m)
	if stat < 1.0 {
		return 1.0
	}
	return stat
}
