/*------------------------------------------------------------------------------
* filter_kernel.go : measurement-update strategy selection
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

// FilterKernel is the capability set every estimator variant implements:
// folding a linearized (or, for the particle filter, position-only)
// measurement into the float state and covariance. The orchestrator talks
// only to this interface; which concrete kernel backs it is chosen once at
// Init from opt.FilterType and held fixed for the life of the Engine.
type FilterKernel interface {
	// MeasurementUpdate folds v = z - h(x), linearized by H (n x m,
	// column-major) with measurement covariance R (m x m), into x/P in
	// place. Returns the adaptive innovation scale applied (1 if none) and
	// a non-zero info on numerical failure, in which case x/P are left
	// unmodified.
	MeasurementUpdate(x, P, H, v, R []float64, n, m int) (lambda float64, info int)
}

// NewFilterKernel selects the measurement-update strategy named by
// opt.FilterType. Unrecognized values fall back to the EKF.
func NewFilterKernel(opt *PrcOpt) FilterKernel {
	switch opt.FilterType {
	case FILTER_UKF:
		return &ukfKernel{alpha: 1e-3, beta: 2.0, kappa: 0.0}
	case FILTER_PF:
		return newPFKernel(200)
	default:
		return &ekfKernel{}
	}
}
