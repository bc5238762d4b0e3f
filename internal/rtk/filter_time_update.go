/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"math"
)

/* constants/macros ----------------------------------------------------------*/
const (
	// const VAR_POS     float64= 9000.0 /* initial variance of receiver pos (m^2) */
	// const  VAR_VEL    float64= SQR(10.0) /* initial variance of receiver vel ((m/s)^2) */
	// const  VAR_ACC    float64= SQR(10.0) /* initial variance of receiver acc ((m/ss)^2) */
	VAR_HWBIAS float64 = 1.0 /* initial variance of h/w bias ((m/MHz)^2) */
	// const  VAR_GRA    float64= SQR(0.001) /* initial variance of gradient (m^2) */
	// const  INIT_ZWD   float64= 0.15     /* initial zwd (m) */
	PRN_HWBIAS float64 = 1e-6 /* process noise of h/w bias (m/MHz/sqrt(s)) */
	//const GAP_RESION float64 = 120      /* gap to reset ionosphere parameters (epochs) */
	MAXACC      float64 = 30.0  /* max accel for doppler slip detection (m/s^2) */
	VAR_HOLDAMB float64 = 0.001 /* constraint to hold ambiguity (cycle^2) */
	TTOL_MOVEB  float64 = float64(1.0 + 2*DTTOL)
	/* time sync tolerance for moving-baseline (s) */
	INIT_ZWD float64 = 0.15 /* initial zwd (m) */
)

/* CalcBaseLineLen length -----------------------------------------------------------*/
func CalcBaseLineLen(ru, rb, dr []float64) float64 {

	for i := 0; i < 3; i++ {
		dr[i] = ru[i] - rb[i]
	}
	return Norm(dr, 3)
}


/* initialize state and covariance -------------------------------------------*/
func (rtk *Engine) Initx(xi, fvar float64, i int) {

	rtk.X[i] = xi
	for j := 0; j < rtk.Nx; j++ {
		if i == j {
			rtk.P[i+j*rtk.Nx], rtk.P[j+i*rtk.Nx] = fvar, fvar
		} else {
			rtk.P[i+j*rtk.Nx], rtk.P[j+i*rtk.Nx] = 0.0, 0.0
		}
	}
}


/* temporal update of position/velocity/acceleration -------------------------*/
func (rtk *Engine) UpdatePos(tt float64) {
	var (
		F, P, FP, x, xp []float64
		pos             [3]float64
		Q, Qv           [9]float64
		fvar            float64 = 0.0
		i, j, nx        int
		ix              []int
	)

	Trace(4, "udpos   : tt=%.3f\n", tt)

	/* fixed mode */
	if rtk.Opt.Mode == PMODE_FIXED {
		for i = 0; i < 3; i++ {
			rtk.Initx(rtk.Opt.Ru[i], 1e-8, i)
		}
		return
	}
	/* initialize position for first epoch */
	if Norm(rtk.X, 3) <= 0.0 {
		for i = 0; i < 3; i++ {
			rtk.Initx(rtk.Sol.Rr[i], VAR_POS, i)
		}
		if rtk.Opt.Dynamics > 0 {
			for i = 3; i < 6; i++ {
				rtk.Initx(rtk.Sol.Rr[i], VAR_VEL, i)
			}
			for i = 6; i < 9; i++ {
				rtk.Initx(1e-6, VAR_ACC, i)
			}
		}
	}
	/* static mode */
	if rtk.Opt.Mode == PMODE_STATIC {
		return
	}

	/* kinmatic mode without dynamics */
	if rtk.Opt.Dynamics == 0 {
		for i = 0; i < 3; i++ {
			rtk.Initx(rtk.Sol.Rr[i], VAR_POS, i)
		}
		return
	}
	/* check variance of estimated postion */
	for i = 0; i < 3; i++ {
		fvar += rtk.P[i+i*rtk.Nx]
	}
	fvar /= 3.0

	if fvar > VAR_POS {
		/* reset position with large variance */
		for i = 0; i < 3; i++ {
			rtk.Initx(rtk.Sol.Rr[i], VAR_POS, i)
		}
		for i = 3; i < 6; i++ {
			rtk.Initx(rtk.Sol.Rr[i], VAR_VEL, i)
		}
		for i = 6; i < 9; i++ {
			rtk.Initx(1e-6, VAR_ACC, i)
		}
		Trace(5, "reset rtk position due to large variance: var=%.3f\n", fvar)
		return
	}
	/* generate valid state index */
	ix = IMat(rtk.Nx, 1)
	for i, nx = 0, 0; i < rtk.Nx; i++ {
		if rtk.X[i] != 0.0 && rtk.P[i+i*rtk.Nx] > 0.0 {
			ix[nx] = i
			nx++
		}
	}
	if nx < 9 {

		return
	}
	/* state transition of position/velocity/acceleration */
	F = Eye(nx)
	P = Mat(nx, nx)
	FP = Mat(nx, nx)
	x = Mat(nx, 1)
	xp = Mat(nx, 1)

	for i = 0; i < 6; i++ {
		F[i+(i+3)*nx] = tt
	}
	for i = 0; i < 3; i++ {
		F[i+(i+6)*nx] = SQR(tt) / 2.0
	}
	for i = 0; i < nx; i++ {
		x[i] = rtk.X[ix[i]]
		for j = 0; j < nx; j++ {
			P[i+j*nx] = rtk.P[ix[i]+ix[j]*rtk.Nx]
		}
	}
	/* x=F*x, P=F*P*F+Q */
	MatMul("NN", nx, 1, nx, 1.0, F, x, 0.0, xp)
	MatMul("NN", nx, nx, nx, 1.0, F, P, 0.0, FP)
	MatMul("NT", nx, nx, nx, 1.0, FP, F, 0.0, P)

	for i = 0; i < nx; i++ {
		rtk.X[ix[i]] = xp[i]
		for j = 0; j < nx; j++ {
			rtk.P[ix[i]+ix[j]*rtk.Nx] = P[i+j*nx]
		}
	}
	/* process noise added to only acceleration */
	Q[0], Q[4] = SQR(rtk.Opt.Prn[3])*math.Abs(tt), SQR(rtk.Opt.Prn[3])*math.Abs(tt)
	Q[8] = SQR(rtk.Opt.Prn[4]) * math.Abs(tt)
	Ecef2Pos(rtk.X, pos[:])
	Cov2Ecef(pos[:], Q[:], Qv[:])
	for i = 0; i < 3; i++ {
		for j = 0; j < 3; j++ {
			rtk.P[i+6+(j+6)*rtk.Nx] += Qv[i+j*3]
		}
	}
}


/* temporal update of ionospheric parameters ---------------------------------*/
func (rtk *Engine) UpdateIon(tt, bl float64, sat []int, ns int) {
	var (
		el, fact float64
		i, j     int
	)

	Trace(4, "udion   : tt=%.3f bl=%.0f ns=%d\n", tt, bl, ns)

	for i = 1; i <= MAXSAT; i++ {
		j = RII(i, &rtk.Opt)
		if rtk.X[j] != 0.0 &&
			rtk.Ssat[i-1].Outc[0] > uint32(GAP_RESION) && rtk.Ssat[i-1].Outc[1] > uint32(GAP_RESION) {
			rtk.X[j] = 0.0
		}
	}
	for i = 0; i < ns; i++ {
		j = RII(sat[i], &rtk.Opt)

		if rtk.X[j] == 0.0 {
			rtk.Initx(1e-6, SQR(rtk.Opt.Std[1]*bl/1e4), j)
		} else {
			/* elevation dependent factor of process noise */
			el = rtk.Ssat[sat[i]-1].Azel[1]
			fact = math.Cos(el)
			rtk.P[j+j*rtk.Nx] += SQR(rtk.Opt.Prn[1]*bl/1e4*fact) * math.Abs(tt)
		}
	}
}


/* temporal update of tropospheric parameters --------------------------------*/
func (rtk *Engine) UpdateTrop(tt, bl float64) {
	var i, j, k int

	Trace(4, "udtrop  : tt=%.3f\n", tt)

	for i = 0; i < 2; i++ {
		j = RIT(i, &rtk.Opt)

		if rtk.X[j] == 0.0 {
			rtk.Initx(INIT_ZWD, SQR(rtk.Opt.Std[2]), j) /* initial zwd */

			if rtk.Opt.TropOpt >= TROPOPT_ESTG {
				for k = 0; k < 2; k++ {
					j++
					rtk.Initx(1e-6, VAR_GRA, j)
				}
			}
		} else {
			rtk.P[j+j*rtk.Nx] += SQR(rtk.Opt.Prn[2]) * math.Abs(tt)

			if rtk.Opt.TropOpt >= TROPOPT_ESTG {
				for k = 0; k < 2; k++ {
					j++
					rtk.P[j*(1+rtk.Nx)] += SQR(rtk.Opt.Prn[2]*0.3) * math.Abs(tt)
				}
			}
		}
	}
}


/* temporal update of receiver h/w biases ------------------------------------*/
func (rtk *Engine) UpdateRcvBias(tt float64) {
	var i, j int

	Trace(4, "udrcvbias: tt=%.3f\n", tt)

	for i = 0; i < NFREQGLO; i++ {
		j = RIL(i, &rtk.Opt)

		switch {
		case rtk.X[j] == 0.0:
			rtk.Initx(1e-6, VAR_HWBIAS, j)
		case rtk.Nfix >= rtk.Opt.MinFix && float64(rtk.Sol.Ratio) > rtk.Opt.ThresAr[0]:
			/* hold to fixed solution */
			rtk.Initx(rtk.Xa[j], rtk.Pa[j+j*rtk.Na], j)
		default:
			rtk.P[j+j*rtk.Nx] += SQR(PRN_HWBIAS) * math.Abs(tt)
		}
	}
}


/* temporal update of phase biases -------------------------------------------*/
func (rtk *Engine) UpdateBias(tt float64, obs []ObsD, sat, iu, ir []int, ns int, nav *Nav) {
	var (
		cp, pr, cp1, cp2, pr1, pr2, offset, freqi, freq1, freq2, C1, C2 float64
		bias                                                            []float64
		i, j, k, slip, nf                                               int
		reset                                                           bool
	)
	nf = RNF(&rtk.Opt)

	Trace(4, "udbias  : tt=%.3f ns=%d\n", tt, ns)

	for i = 0; i < ns; i++ {

		/* detect cycle slip by LLI */
		for k = 0; k < rtk.Opt.Nf; k++ {
			rtk.Ssat[sat[i]-1].Slip[k] &= 0xFC
		}
		rtk.DetectSlp_ll(obs, iu[i], 1)
		rtk.DetectSlp_ll(obs, ir[i], 2)

		/* detect cycle slip by geometry-free phase jump */
		rtk.DetectSlp_gf(obs, iu[i], ir[i], nav)

		/* detect cycle slip by doppler and phase difference */
		rtk.DetectSlp_dop(obs, iu[i], 1, nav)
		rtk.DetectSlp_dop(obs, ir[i], 2, nav)

		/* update half-cycle valid flag */
		for k = 0; k < nf; k++ {
			if (obs[iu[i]].LLI[k]&2 > 0) || (obs[ir[i]].LLI[k]&2 > 0) {
				rtk.Ssat[sat[i]-1].Half[k] = 0
			} else {
				rtk.Ssat[sat[i]-1].Half[k] = 1
			}

		}
		rtk.updateHalfPending(sat[i])
	}
	for k = 0; k < nf; k++ {
		/* reset phase-bias if instantaneous AR or expire obs outage counter */
		for i = 1; i <= MAXSAT; i++ {
			rtk.Ssat[i-1].Outc[k]++
			reset = rtk.Ssat[i-1].Outc[k] > uint32(rtk.Opt.MaxOut)

			switch {
			case rtk.Opt.ModeAr == ARMODE_INST && rtk.X[RIB(i, k, &rtk.Opt)] != 0.0:
				rtk.Initx(0.0, 0.0, RIB(i, k, &rtk.Opt))
			case reset && rtk.X[RIB(i, k, &rtk.Opt)] != 0.0:
				rtk.Initx(0.0, 0.0, RIB(i, k, &rtk.Opt))
				Trace(4, "udbias : obs outage counter overflow (sat=%3d L%d n=%d)\n",
					i, k+1, rtk.Ssat[i-1].Outc[k])
				rtk.Ssat[i-1].Outc[k] = 0
			}
			if rtk.Opt.ModeAr != ARMODE_INST && reset {
				rtk.Ssat[i-1].Lock[k] = -rtk.Opt.MinLock
			}
		}
		/* reset phase-bias if detecting cycle slip */
		for i = 0; i < ns; i++ {
			j = RIB(sat[i], k, &rtk.Opt)
			rtk.P[j+j*rtk.Nx] += rtk.Opt.Prn[0] * rtk.Opt.Prn[0] * math.Abs(tt)
			slip = int(rtk.Ssat[sat[i]-1].Slip[k])
			if rtk.Opt.IonoOpt == IONOOPT_IFLC {
				slip |= int(rtk.Ssat[sat[i]-1].Slip[1])
			}
			if rtk.Opt.ModeAr == ARMODE_INST || slip&1 == 0 {
				continue
			}
			rtk.X[j] = 0.0
			rtk.Ssat[sat[i]-1].Lock[k] = -rtk.Opt.MinLock
		}
		bias = Zeros(ns, 1)

		/* estimate approximate phase-bias by phase - code */
		for i, j, offset = 0, 0, 0.0; i < ns; i++ {

			if rtk.Opt.IonoOpt != IONOOPT_IFLC {
				cp = SingleDifferencedObs(obs, iu[i], ir[i], k) /* cycle */
				pr = SingleDifferencedObs(obs, iu[i], ir[i], k+NFREQ)
				freqi = Sat2Freq(sat[i], obs[iu[i]].Code[k], nav)
				if cp == 0.0 || pr == 0.0 || freqi == 0.0 {
					continue
				}

				bias[i] = cp - pr*freqi/CLIGHT
			} else {
				cp1 = SingleDifferencedObs(obs, iu[i], ir[i], 0)
				cp2 = SingleDifferencedObs(obs, iu[i], ir[i], 1)
				pr1 = SingleDifferencedObs(obs, iu[i], ir[i], NFREQ)
				pr2 = SingleDifferencedObs(obs, iu[i], ir[i], NFREQ+1)
				freq1 = Sat2Freq(sat[i], obs[iu[i]].Code[0], nav)
				freq2 = Sat2Freq(sat[i], obs[iu[i]].Code[1], nav)
				if cp1 == 0.0 || cp2 == 0.0 || pr1 == 0.0 || pr2 == 0.0 || freq1 == 0.0 || freq2 <= 0.0 {
					continue
				}

				C1 = SQR(freq1) / (SQR(freq1) - SQR(freq2))
				C2 = -SQR(freq2) / (SQR(freq1) - SQR(freq2))
				bias[i] = (C1*cp1*CLIGHT/freq1 + C2*cp2*CLIGHT/freq2) - (C1*pr1 + C2*pr2)
			}
			if rtk.X[RIB(sat[i], k, &rtk.Opt)] != 0.0 {
				offset += bias[i] - rtk.X[RIB(sat[i], k, &rtk.Opt)]
				j++
			}
		}
		/* correct phase-bias offset to enssure phase-code coherency */
		if j > 0 {
			for i = 1; i <= MAXSAT; i++ {
				if rtk.X[RIB(i, k, &rtk.Opt)] != 0.0 {
					rtk.X[RIB(i, k, &rtk.Opt)] += offset / float64(j)
				}
			}
		}
		/* set initial states of phase-bias */
		for i = 0; i < ns; i++ {
			if bias[i] == 0.0 || rtk.X[RIB(sat[i], k, &rtk.Opt)] != 0.0 {
				continue
			}
			rtk.Initx(bias[i], SQR(rtk.Opt.Std[0]), RIB(sat[i], k, &rtk.Opt))
		}

	}
}


/* temporal update of states --------------------------------------------------*/
func (rtk *Engine) UpdateState(obs []ObsD, sat, iu, ir []int, ns int, nav *Nav) {
	var (
		bl float64
		dr [3]float64
	)
	tt := rtk.Tt
	Trace(4, "udstate : ns=%d\n", ns)

	/* temporal update of position/velocity/acceleration */
	rtk.UpdatePos(tt)

	/* temporal update of ionospheric parameters */
	if rtk.Opt.IonoOpt >= IONOOPT_EST {
		bl = CalcBaseLineLen(rtk.X, rtk.Rb[:], dr[:])
		rtk.UpdateIon(tt, bl, sat, ns)
	}
	/* temporal update of tropospheric parameters */
	if rtk.Opt.TropOpt >= TROPOPT_EST {
		rtk.UpdateTrop(tt, bl)
	}
	/* temporal update of eceiver h/w bias */
	if rtk.Opt.GloModeAr == 2 && (rtk.Opt.NavSys&SYS_GLO) > 0 {
		rtk.UpdateRcvBias(tt)
	}
	/* temporal update of phase-bias */
	if rtk.Opt.Mode > PMODE_DGPS {
		rtk.UpdateBias(tt, obs, sat, iu, ir, ns, nav)
	}
}
