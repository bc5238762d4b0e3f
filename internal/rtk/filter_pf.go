/*------------------------------------------------------------------------------
* filter_pf.go : particle filter measurement update (position subspace only)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import "math"

// pfKernel maintains a swarm over the rover position states (indices 0..2)
// and falls back to the EKF's Joseph-form update for every other state
// (velocity/accel, iono, tropo, ambiguities): ambiguity resolution and its
// LAMBDA search operate on the float state/covariance regardless of which
// kernel produced them, so ambiguities cannot live only in a particle swarm,
// which makes the particle filter a position-only estimator in practice.
type pfKernel struct {
	n         int
	weights   []float64
	particles [][3]float64
	seeded    bool
	rngState  float64 // per-kernel deterministic sampler state, not process-global
}

func newPFKernel(n int) *pfKernel {
	return &pfKernel{n: n}
}

func (k *pfKernel) MeasurementUpdate(x, P, H, v, R []float64, n, m int) (float64, int) {
	lambda := innovationScale(v, R, m)

	if !k.seeded {
		k.seedSwarm(x, P)
	}

	// H's first three rows are the partials of the DD residuals w.r.t.
	// rover position; a particle offset dp from the linearization point x
	// perturbs the predicted residual by H[0:3,:]' * dp.
	sumw := 0.0
	for i, p := range k.particles {
		dp := [3]float64{p[0] - x[0], p[1] - x[1], p[2] - x[2]}
		var e float64
		for j := 0; j < m; j++ {
			pred := H[0+j*n]*dp[0] + H[1+j*n]*dp[1] + H[2+j*n]*dp[2]
			d := v[j] - pred
			e += d * d / (R[j+j*m] * lambda)
		}
		w := math.Exp(-0.5 * e)
		k.weights[i] *= w
		sumw += k.weights[i]
	}
	if sumw <= 0.0 {
		// degenerate weights: reseed next epoch and fall back to the EKF now.
		k.seeded = false
		ekf := &ekfKernel{}
		return ekf.MeasurementUpdate(x, P, H, v, R, n, m)
	}
	for i := range k.weights {
		k.weights[i] /= sumw
	}

	var mean [3]float64
	for i, p := range k.particles {
		for j := 0; j < 3; j++ {
			mean[j] += k.weights[i] * p[j]
		}
	}
	var varr [3]float64
	for i, p := range k.particles {
		for j := 0; j < 3; j++ {
			d := p[j] - mean[j]
			varr[j] += k.weights[i] * d * d
		}
	}

	// effective sample size; systematic resampling below N/2.
	var ssw float64
	for _, w := range k.weights {
		ssw += w * w
	}
	ess := 1.0 / ssw
	if ess < float64(k.n)/2.0 {
		k.systematicResample()
	}

	// saved so a failed EKF update below hands x/P back unmodified
	x0 := append([]float64(nil), x...)
	P0 := append([]float64(nil), P...)

	x[0], x[1], x[2] = mean[0], mean[1], mean[2]
	P[0+0*n] = math.Max(varr[0], 1e-10)
	P[1+1*n] = math.Max(varr[1], 1e-10)
	P[2+2*n] = math.Max(varr[2], 1e-10)

	// every other state/covariance entry (velocity/accel, iono, tropo,
	// ambiguities) follows the EKF Joseph update so they stay consistent
	// with the position correction above; the EKF call also refreshes the
	// position/other cross-covariance terms the swarm does not track.
	ekf := &ekfKernel{}
	_, info := ekf.MeasurementUpdate(x, P, H, v, R, n, m)
	if info != 0 {
		copy(x, x0)
		copy(P, P0)
	}
	return lambda, info
}

func (k *pfKernel) seedSwarm(x, P []float64) {
	n := len(x)
	sigma := [3]float64{
		math.Sqrt(math.Max(P[0], 1e-6)),
		math.Sqrt(math.Max(P[1+1*n], 1e-6)),
		math.Sqrt(math.Max(P[2+2*n], 1e-6)),
	}
	k.particles = make([][3]float64, k.n)
	k.weights = make([]float64, k.n)
	for i := 0; i < k.n; i++ {
		var p [3]float64
		for j := 0; j < 3; j++ {
			p[j] = x[j] + sigma[j]*k.gaussianSample()
		}
		k.particles[i] = p
		k.weights[i] = 1.0 / float64(k.n)
	}
	k.seeded = true
}

// systematicResample replaces the swarm with N draws spaced deterministically
// by 1/N starting from a stratified offset, the standard low-variance
// alternative to multinomial resampling.
func (k *pfKernel) systematicResample() {
	n := k.n
	cum := make([]float64, n)
	cum[0] = k.weights[0]
	for i := 1; i < n; i++ {
		cum[i] = cum[i-1] + k.weights[i]
	}
	u0 := cum[n-1] / float64(2*n)
	newParticles := make([][3]float64, n)
	j := 0
	for i := 0; i < n; i++ {
		u := u0 + float64(i)/float64(n)*cum[n-1]
		for cum[j] < u && j < n-1 {
			j++
		}
		newParticles[i] = k.particles[j]
	}
	k.particles = newParticles
	for i := range k.weights {
		k.weights[i] = 1.0 / float64(n)
	}
}

// gaussianSample draws from the standard normal without math/rand: Step
// must stay reproducible for a fixed input sequence on a given Engine (§5),
// so the sampler's state lives on the kernel instance rather than a package
// global, advancing a golden-ratio low-discrepancy sequence through the
// Box-Muller transform.
func (k *pfKernel) gaussianSample() float64 {
	const golden = 0.6180339887498949
	k.rngState += golden
	if k.rngState >= 1.0 {
		k.rngState -= 1.0
	}
	u1 := k.rngState + 1e-9
	u2 := math.Mod(k.rngState*golden, 1.0) + 1e-9
	return math.Sqrt(-2.0*math.Log(u1)) * math.Cos(2.0*math.Pi*u2)
}
