/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"math"
)

/* single-differenced observable ---------------------------------------------*/
func SingleDifferencedObs(obs []ObsD, i, j, k int) float64 {
	var pi, pj float64
	if k < NFREQ {
		pi = obs[i].L[k]
		pj = obs[j].L[k]
	} else {
		pi = obs[i].P[k-NFREQ]
		pj = obs[j].P[k-NFREQ]
	}
	if pi == 0.0 || pj == 0.0 {
		return 0.0
	}
	return pi - pj
}


/* single-differenced geometry-free linear combination of phase --------------*/
func GeometryFreeObs(obs []ObsD, i, j, k int, nav *Nav) float64 {
	var freq1, freq2, L1, L2 float64

	freq1 = Sat2Freq(obs[i].Sat, obs[i].Code[0], nav)
	freq2 = Sat2Freq(obs[i].Sat, obs[i].Code[k], nav)
	L1 = SingleDifferencedObs(obs, i, j, 0)
	L2 = SingleDifferencedObs(obs, i, j, k)
	if freq1 == 0.0 || freq2 == 0.0 || L1 == 0.0 || L2 == 0.0 {
		return 0.0
	}
	return L1*CLIGHT/freq1 - L2*CLIGHT/freq2
}


/* single-differenced measurement error variance -----------------------------*/
func RtkVarianceErr(sat, sys int, el, bl, dt float64, f int, opt *PrcOpt) float64 {
	var a, b, c, d, fact float64
	c = opt.Err[3] * bl / 1e4
	d = CLIGHT * opt.SatClkStab * dt
	fact = 1.0
	sinel := math.Sin(el)
	nf := RNF(opt)

	if f >= nf {
		fact = opt.eratio[f-nf]
	}
	if fact <= 0.0 {
		fact = opt.eratio[0]
	}
	switch sys {
	case SYS_GLO:
		fact *= float64(EFACT_GLO)
	case SYS_SBS:
		fact *= float64(EFACT_SBS)
	default:
		fact *= float64(EFACT_GPS)
	}
	a = fact * opt.Err[1]
	b = fact * opt.Err[2]
	if opt.IonoOpt == IONOOPT_IFLC {
		return 2.0*3.0*(a*a+b*b/sinel/sinel+c*c) + d*d
	}
	return 2.0*1.0*(a*a+b*b/sinel/sinel+c*c) + d*d
}


/* UD (undifferenced) phase/code residual for satellite ----------------------*/
func ZdResSat(base int, r float64, obs *ObsD, nav *Nav,
	azel, dant []float64, opt *PrcOpt, y, freq []float64) {
	var (
		freq1, freq2, C1, C2, dant_if float64
		i, nf                         int
	)
	nf = RNF(opt)

	if opt.IonoOpt == IONOOPT_IFLC { /* iono-free linear combination */
		freq1 = Sat2Freq(obs.Sat, obs.Code[0], nav)
		freq2 = Sat2Freq(obs.Sat, obs.Code[1], nav)
		if freq1 == 0.0 || freq2 == 0.0 {
			return
		}

		if TestSnr(base, 0, azel[1], float64(obs.SNR[0])*float64(SNR_UNIT), &opt.SnrMask) > 0 ||
			TestSnr(base, 1, azel[1], float64(obs.SNR[1])*float64(SNR_UNIT), &opt.SnrMask) > 0 {
			return
		}

		C1 = SQR(freq1) / (SQR(freq1) - SQR(freq2))
		C2 = -SQR(freq2) / (SQR(freq1) - SQR(freq2))
		dant_if = C1*dant[0] + C2*dant[1]

		if obs.L[0] != 0.0 && obs.L[1] != 0.0 {
			y[0] = C1*obs.L[0]*CLIGHT/freq1 + C2*obs.L[1]*CLIGHT/freq2 - r - dant_if
		}
		if obs.P[0] != 0.0 && obs.P[1] != 0.0 {
			y[1] = C1*obs.P[0] + C2*obs.P[1] - r - dant_if
		}
		freq[0] = 1.0
	} else {
		for i = 0; i < nf; i++ {
			if freq[i] = Sat2Freq(obs.Sat, obs.Code[i], nav); freq[i] == 0.0 {
				continue
			}

			/* check SNR mask */
			if TestSnr(base, i, azel[1], float64(obs.SNR[i])*float64(SNR_UNIT), &opt.SnrMask) != 0 {
				continue
			}
			/* residuals = observable - pseudorange */
			if obs.L[i] != 0.0 {
				y[i] = obs.L[i]*CLIGHT/freq[i] - r - dant[i]
			}
			if obs.P[i] != 0.0 {
				y[i+nf] = obs.P[i] - r - dant[i]
			}
		}
	}
}


/* UD (undifferenced) phase/code residuals -----------------------------------*/
func ZDRes(base int, obs []ObsD, n int, rs, dts, fvar []float64, svh []int,
	nav *Nav, rr []float64, opt *PrcOpt, index int, y, e, azel, freq []float64) int {
	var (
		zhd, r         float64
		rr_, pos, disp [3]float64
		dant           [NFREQ]float64
		zazel          []float64 = []float64{0.0, 90.0 * D2R}
		i, nf          int
	)
	nf = RNF(opt)

	Trace(4, "zdres   : n=%d\n", n)

	for i = 0; i < n*nf*2; i++ {
		y[i] = 0.0
	}
	if Norm(rr, 3) <= 0.0 {
		return 0 /* no receiver position */
	}

	for i = 0; i < 3; i++ {
		rr_[i] = rr[i]
	}

	/* earth tide correction */
	if opt.TideCorr > 0 {
		TideDisp(GpsT2Utc(obs[0].Time), rr_[:], opt.TideCorr, &nav.Erp,
			opt.Odisp[base][:], disp[:])
		for i = 0; i < 3; i++ {
			rr_[i] += disp[i]
		}
	}
	Ecef2Pos(rr_[:], pos[:])

	for i = 0; i < n; i++ {
		/* compute geometric-range and azimuth/elevation angle */
		if r = GeoDist(rs[i*6:], rr_[:], e[i*3:]); r <= 0.0 {
			continue
		}
		if SatAzel(pos[:], e[i*3:], azel[i*2:]) < opt.Elmin {
			continue
		}

		/* excluded satellite? */
		if SatExclude(obs[i].Sat, fvar[i], svh[i], opt) > 0 {
			continue
		}

		/* satellite clock-bias */
		r += -CLIGHT * dts[i*2]

		/* troposphere delay model (hydrostatic) */
		zhd = TropModel(obs[0].Time, pos[:], zazel, 0.0)
		r += TropMapFunc(obs[i].Time, pos[:], azel[i*2:], nil) * zhd

		/* receiver antenna phase center correction */
		AntModel(&opt.Pcvr[index], opt.AntDel[index][:], azel[i*2:], opt.PosOpt[1],
			dant[:])

		/* UD phase/code residual for satellite */
		ZdResSat(base, r, &obs[i], nav, azel[i*2:], dant[:], opt, y[i*nf*2:], freq[i*nf:])
	}
	Trace(4, "rr_=%.3f %.3f %.3f\n", rr_[0], rr_[1], rr_[2])
	Trace(4, "pos=%.9f %.9f %.3f\n", pos[0]*R2D, pos[1]*R2D, pos[2])
	for i = 0; i < n; i++ {
		Trace(4, "sat=%2d %13.3f %13.3f %13.3f %13.10f %6.1f %5.1f\n",
			obs[i].Sat, rs[i*6], rs[1+i*6], rs[2+i*6], dts[i*2], azel[i*2]*R2D,
			azel[1+i*2]*R2D)
	}
	Trace(4, "y=\n")
	tracemat(4, y, nf*2, n, 13, 3)

	return 1
}


/* test valid observation data -----------------------------------------------*/
func ValidObs(i, j, f, nf int, y []float64) int {
	/* if no phase observable, psudorange is also unusable */
	if y[f+i*nf*2] != 0.0 && y[f+j*nf*2] != 0.0 &&
		(f < nf || (y[f-nf+i*nf*2] != 0.0 && y[f-nf+j*nf*2] != 0.0)) {
		return 1
	}
	return 0
}


/* DD (double-differenced) measurement error covariance ----------------------*/
func DDCovariance(nb []float64, n int, Ri, Rj []float64, nv int, R []float64) {
	var i, j, k, b int

	Trace(4, "ddcov   : n=%d\n", n)

	for i = 0; i < nv*nv; i++ {
		R[i] = 0.0
	}
	for b = 0; b < n; k, b = k+int(nb[b]), b+1 {

		for i = 0; i < int(nb[b]); i++ {
			for j = 0; j < int(nb[b]); j++ {
				R[k+i+(k+j)*nv] = Ri[k+i]
				if i == j {
					R[k+i+(k+j)*nv] = Ri[k+i] + Rj[k+i]
				}
			}
		}
	}
	Trace(5, "R=\n")
	tracemat(5, R, nv, nv, 8, 6)
}


/* baseline length constraint ------------------------------------------------*/
func (rtk *Engine) ConstBaselineLen(x, P, v, H, Ri, Rj []float64, index int) int {
	var (
		thres    float64 = 0.1 /* threshold for nonliearity (v.2.3.0) */
		xb, b    [3]float64
		bb, fvar float64
		i        int
	)

	Trace(4, "constbl : \n")

	/* no constraint */
	if rtk.Opt.Baseline[0] <= 0.0 {
		return 0
	}

	/* time-adjusted baseline vector and length */
	for i = 0; i < 3; i++ {
		xb[i] = rtk.Rb[i]
		b[i] = x[i] - xb[i]
	}
	bb = Norm(b[:], 3)

	/* approximate variance of solution */
	if P != nil {
		for i = 0; i < 3; i++ {
			fvar += P[i+i*rtk.Nx]
		}
		fvar /= 3.0
	}
	/* check nonlinearity */
	if fvar > SQR(thres*bb) {
		Trace(2, "constbl : equation nonlinear (bb=%.3f var=%.3f)\n", bb, fvar)
		return 0
	}
	/* constraint to baseline length */
	v[index] = rtk.Opt.Baseline[0] - bb
	if H != nil {
		for i = 0; i < 3; i++ {
			H[i+index*rtk.Nx] = b[i] / bb
		}
	}
	Ri[index] = 0.0
	Rj[index] = SQR(rtk.Opt.Baseline[1])

	Trace(5, "baseline len   v=%13.3f R=%8.6f %8.6f\n", v[index], Ri[index], Rj[index])

	return 1
}


/* precise tropspheric model -------------------------------------------------*/
func PrecTrop(time Gtime, pos []float64, r int, azel []float64, opt *PrcOpt, x, dtdx []float64) float64 {
	var m_w, cotz, grad_n, grad_e float64
	i := RIT(r, opt)

	/* wet mapping function */
	TropMapFunc(time, pos, azel, &m_w)

	if opt.TropOpt >= TROPOPT_ESTG && azel[1] > 0.0 {

		/* m_w=m_0+m_0*cot(el)*(Gn*cos(az)+Ge*sin(az)): ref [6] */
		cotz = 1.0 / math.Tan(azel[1])
		grad_n = m_w * cotz * math.Cos(azel[0])
		grad_e = m_w * cotz * math.Sin(azel[0])
		m_w += grad_n*x[i+1] + grad_e*x[i+2]
		dtdx[1] = grad_n * x[i]
		dtdx[2] = grad_e * x[i]
	} else {
		dtdx[1], dtdx[2] = 0.0, 0.0
	}
	dtdx[0] = m_w
	return m_w * x[i]
}


/* test satellite system (m=0:GPS/SBS,1:GLO,2:GAL,3:BDS,4:QZS,5:IRN) ---------*/
func test_sys(sys, m int) int {
	switch sys {
	case SYS_GPS:
		if m == 0 {
			return 1
		}
	case SYS_SBS:
		if m == 0 {
			return 1
		}
	case SYS_GLO:
		if m == 1 {
			return 1
		}
	case SYS_GAL:
		if m == 2 {
			return 1
		}
	case SYS_CMP:
		if m == 3 {
			return 1
		}
	case SYS_QZS:
		if m == 4 {
			return 1
		}
	case SYS_IRN:
		if m == 5 {
			return 1
		}
	}
	return 0
}


/* DD (double-differenced) phase/code residuals ------------------------------*/
func (rtk *Engine) DDRes(nav *Nav, dt float64, x, P []float64, sat []int, y, e,
	azel, freq []float64, iu, ir []int,
	ns int, v, H, R []float64, vflg []int) int {
	var (
		opt                                        *PrcOpt = &rtk.Opt
		bl, didxi, didxj, freqi, freqj             float64
		dr, posu, posr                             [3]float64
		tropr, tropu, dtdxr, dtdxu, Ri, Rj, im, Hi []float64
		i, j, k, m, f, nv, b, sysi, sysj, nf       int
		nb                                         [NFREQ*4*2 + 2]float64
	)
	nf = RNF(opt)

	Trace(4, "ddres   : dt=%.1f nx=%d ns=%d\n", dt, rtk.Nx, ns)

	bl = CalcBaseLineLen(x, rtk.Rb[:], dr[:])
	Ecef2Pos(x, posu[:])
	Ecef2Pos(rtk.Rb[:], posr[:])

	Ri = Mat(ns*nf*2+2, 1)
	Rj = Mat(ns*nf*2+2, 1)
	im = Mat(ns, 1)
	tropu = Mat(ns, 1)
	tropr = Mat(ns, 1)
	dtdxu = Mat(ns, 3)
	dtdxr = Mat(ns, 3)

	for i = 0; i < MAXSAT; i++ {
		for j = 0; j < NFREQ; j++ {
			rtk.Ssat[i].Resp[j], rtk.Ssat[i].Resc[j] = 0.0, 0.0
		}
	}
	/* compute factors of ionospheric and tropospheric delay */
	for i = 0; i < ns; i++ {
		if opt.IonoOpt >= IONOOPT_EST {
			im[i] = (IonMapf(posu[:], azel[iu[i]*2:]) + IonMapf(posr[:], azel[ir[i]*2:])) / 2.0
		}
		if opt.TropOpt >= TROPOPT_EST {
			tropu[i] = PrecTrop(rtk.Sol.Time, posu[:], 0, azel[iu[i]*2:], opt, x, dtdxu[i*3:])
			tropr[i] = PrecTrop(rtk.Sol.Time, posr[:], 1, azel[ir[i]*2:], opt, x, dtdxr[i*3:])
		}
	}
	for m = 0; m < 6; m++ { /* m=0:GPS/SBS,1:GLO,2:GAL,3:BDS,4:QZS,5:IRN */

		if opt.Mode > PMODE_DGPS {
			f = 0
		} else {
			f = nf
		}
		for ; f < nf*2; f++ {

			/* search reference satellite with highest elevation */
			for i, j = -1, 0; j < ns; j++ {
				sysi = int(rtk.Ssat[sat[j]-1].Sys)
				if test_sys(sysi, m) == 0 {
					continue
				}
				if ValidObs(iu[j], ir[j], f, nf, y) == 0 {
					continue
				}
				if i < 0 || azel[1+iu[j]*2] >= azel[1+iu[i]*2] {
					i = j
				}
			}
			if i < 0 {
				continue
			}

			/* make DD (double difference) */
			for j = 0; j < ns; j++ {
				if i == j {
					continue
				}
				sysi = int(rtk.Ssat[sat[i]-1].Sys)
				sysj = int(rtk.Ssat[sat[j]-1].Sys)
				freqi = freq[f%nf+iu[i]*nf]
				freqj = freq[f%nf+iu[j]*nf]
				if test_sys(sysj, m) == 0 {
					continue
				}
				if ValidObs(iu[j], ir[j], f, nf, y) == 0 {
					continue
				}

				if H != nil {
					Hi = H[nv*rtk.Nx:]
					for k = 0; k < rtk.Nx; k++ {
						Hi[k] = 0.0
					}
				}
				/* DD residual */
				v[nv] = (y[f+iu[i]*nf*2] - y[f+ir[i]*nf*2]) -
					(y[f+iu[j]*nf*2] - y[f+ir[j]*nf*2])

				/* partial derivatives by rover position */
				if H != nil {
					for k = 0; k < 3; k++ {
						Hi[k] = -e[k+iu[i]*3] + e[k+iu[j]*3]
					}
				}
				/* DD ionospheric delay term */
				if opt.IonoOpt == IONOOPT_EST {
					didxi = im[i] * SQR(FREQ1/freqi)
					didxj = im[j] * SQR(FREQ1/freqj)
					if f < nf {
						didxi = -im[i] * SQR(FREQ1/freqi)
						didxj = -im[j] * SQR(FREQ1/freqj)
					}
					v[nv] -= didxi*x[RII(sat[i], opt)] - didxj*x[RII(sat[j], opt)]
					if H != nil {
						Hi[RII(sat[i], opt)] = didxi
						Hi[RII(sat[j], opt)] = -didxj
					}
				}
				/* DD tropospheric delay term */
				if opt.TropOpt == TROPOPT_EST || opt.TropOpt == TROPOPT_ESTG {
					v[nv] -= (tropu[i] - tropu[j]) - (tropr[i] - tropr[j])
					kn := 3
					if opt.TropOpt < TROPOPT_ESTG {
						kn = 1
					}
					for k = 0; k < kn; k++ {
						if H == nil {
							continue
						}
						Hi[RIT(0, opt)+k] = (dtdxu[k+i*3] - dtdxu[k+j*3])
						Hi[RIT(1, opt)+k] = -(dtdxr[k+i*3] - dtdxr[k+j*3])
					}
				}
				/* DD phase-bias term */
				if f < nf {
					if opt.IonoOpt != IONOOPT_IFLC {
						v[nv] -= CLIGHT/freqi*x[RIB(sat[i], f, opt)] -
							CLIGHT/freqj*x[RIB(sat[j], f, opt)]
						if H != nil {
							Hi[RIB(sat[i], f, opt)] = CLIGHT / freqi
							Hi[RIB(sat[j], f, opt)] = -CLIGHT / freqj
						}
					} else {
						v[nv] -= x[RIB(sat[i], f, opt)] - x[RIB(sat[j], f, opt)]
						if H != nil {
							Hi[RIB(sat[i], f, opt)] = 1.0
							Hi[RIB(sat[j], f, opt)] = -1.0
						}
					}
				}
				if f < nf {
					rtk.Ssat[sat[j]-1].Resc[f] = float32(v[nv])
				} else {
					rtk.Ssat[sat[j]-1].Resp[f-nf] = float32(v[nv])
				}

				/* test innovation */
				if opt.MaxInno > 0.0 && math.Abs(v[nv]) > opt.MaxInno {
					c := "P"
					if f < nf {
						rtk.Ssat[sat[i]-1].Rejc[f]++
						rtk.Ssat[sat[j]-1].Rejc[f]++
						c = "L"
					}

					rtk.errmsg("outlier rejected (sat=%3d-%3d %s%d v=%.3f)\n",
						sat[i], sat[j], c, f%nf+1, v[nv])
					continue
				}
				/* SD (single-differenced) measurement error variances */
				Ri[nv] = RtkVarianceErr(sat[i], sysi, azel[1+iu[i]*2], bl, dt, f, opt)
				Rj[nv] = RtkVarianceErr(sat[j], sysj, azel[1+iu[j]*2], bl, dt, f, opt)

				/* set valid data flags */
				if opt.Mode > PMODE_DGPS {
					if f < nf {
						rtk.Ssat[sat[i]-1].Vsat[f], rtk.Ssat[sat[j]-1].Vsat[f] = 1, 1
					}
				} else {
					rtk.Ssat[sat[i]-1].Vsat[f-nf], rtk.Ssat[sat[j]-1].Vsat[f-nf] = 1, 1
				}
				c := "P"
				if f < nf {
					c = "L"
				}
				Trace(4, "sat=%3d-%3d %s%d v=%13.3f R=%8.6f %8.6f\n", sat[i],
					sat[j], c, f%nf+1, v[nv], Ri[nv], Rj[nv])
				cf := 1
				if f < nf {
					cf = 0
				}
				vflg[nv] = (sat[i] << 16) | (sat[j] << 8) | (cf << 4) | (f % nf)
				nv++
				nb[b]++
			}
			b++
		}
	}
	/* end of system loop */

	/* baseline length constraint for moving baseline */
	if opt.Mode == PMODE_MOVEB && rtk.ConstBaselineLen(x, P, v, H, Ri, Rj, nv) > 0 {
		vflg[nv] = 3 << 4
		nv++
		nb[b]++
		b++
	}
	if H != nil {
		Trace(2, "H=\n")
		tracemat(5, H, rtk.Nx, nv, 7, 4)
	}

	/* DD measurement error covariance */
	DDCovariance(nb[:], b, Ri, Rj, nv, R)

	return nv
}


/* time-interpolation of residuals (for post-processing) ---------------------
* the base epoch buffer (obsb, nb) is local to each call and starts empty, so
* every call copies obs into it and returns the time difference between time
* and obs[0]; y is left unchanged and no interpolation takes place.
*-----------------------------------------------------------------------------*/
func (rtk *Engine) InterpolationRes(time Gtime, obs []ObsD, n int, nav *Nav, y []float64) float64 {
	var (
		obsb        [MAXOBS]ObsD
		yb          [MAXOBS * NFREQ * 2]float64
		rs          [MAXOBS * 6]float64
		dts         [MAXOBS * 2]float64
		fvar        [MAXOBS]float64
		e           [MAXOBS * 3]float64
		azel        [MAXOBS * 2]float64
		freq        [MAXOBS * NFREQ]float64
		nb          int = 0
		svh         [MAXOBS * 2]int
		opt         *PrcOpt = &rtk.Opt
		ttb         float64
		i, j, k, nf int
	)
	tt := TimeDiff(time, obs[0].Time)
	nf = RNF(opt)

	Trace(4, "intpres : n=%d tt=%.1f\n", n, tt)

	if nb == 0 || math.Abs(tt) < float64(DTTOL) {
		nb = n
		for i = 0; i < n; i++ {
			obsb[i] = obs[i]
		}
		return tt
	}
	ttb = TimeDiff(time, obsb[0].Time)
	if math.Abs(ttb) > opt.MaxTmDiff*2.0 || ttb == tt {
		return tt
	}

	nav.SatPoss(time, obsb[:], nb, opt.SatEph, rs[:], dts[:], fvar[:], svh[:])

	if ZDRes(1, obsb[:], nb, rs[:], dts[:], fvar[:], svh[:], nav, rtk.Rb[:], opt, 1, yb[:], e[:], azel[:], freq[:]) == 0 {
		return tt
	}
	for i = 0; i < n; i++ {
		for j = 0; j < nb; j++ {
			if obsb[j].Sat == obs[i].Sat {
				break
			}
		}
		if j >= nb {
			continue
		}
		yi := i * nf * 2
		ybj := j * nf * 2
		for k = 0; k < nf*2; k, yi, ybj = k+1, yi+1, ybj+1 {
			if y[yi] == 0.0 || yb[ybj] == 0.0 {
				y[yi] = 0.0
			} else {
				y[yi] = (ttb*y[yi] - tt*yb[ybj]) / (ttb - tt)
			}
		}
	}
	if math.Abs(ttb) > math.Abs(tt) {
		return ttb
	}
	return tt
}
