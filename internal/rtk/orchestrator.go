/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

/* relative positioning ------------------------------------------------------*/
func (rtk *Engine) RelativePos(obs []ObsD, nu, nr int, nav *Nav) int {
	var (
		rs, dts, fvar, y, e, azel, freq, v, H, R, xp, Pp, xa, bias []float64
		dt                                                         float64
		i, j, f, n, ns, ny, nv, niter, stat, nf, info              int
		sat, iu, ir                                                [MAXSAT]int
		vflg                                                       [MAXOBS*NFREQ*2 + 1]int
		svh                                                        [MAXOBS * 2]int
	)
	opt := &rtk.Opt
	time := obs[0].Time
	n = nu + nr
	stat = SOLQ_FLOAT
	if rtk.Opt.Mode <= PMODE_DGPS {
		stat = SOLQ_DGPS
	}
	nf = opt.Nf
	if opt.IonoOpt == IONOOPT_IFLC {
		nf = 1
	}

	Trace(4, "relpos  : nx=%d nu=%d nr=%d\n", rtk.Nx, nu, nr)

	dt = TimeDiff(time, obs[nu].Time)

	rs = Mat(6, n)
	dts = Mat(2, n)
	fvar = Mat(1, n)
	y = Mat(nf*2, n)
	e = Mat(3, n)
	azel = Zeros(2, n)
	freq = Zeros(nf, n)

	for i = 0; i < MAXSAT; i++ {
		rtk.Ssat[i].Sys = uint8(SatSys(i+1, nil))
		for j = 0; j < NFREQ; j++ {
			rtk.Ssat[i].Vsat[j] = 0
		}
		for j = 1; j < NFREQ; j++ {
			rtk.Ssat[i].Snr[j] = 0
		}
	}
	/* satellite positions/clocks */
	nav.SatPoss(time, obs, n, opt.SatEph, rs, dts, fvar, svh[:])

	/* UD (undifferenced) residuals for base station */
	if ZDRes(1, obs[nu:], nr, rs[nu*6:], dts[nu*2:], fvar[nu:], svh[nu:], nav, rtk.Rb[:], opt, 1,
		y[nu*nf*2:], e[nu*3:], azel[nu*2:], freq[nu*nf:]) == 0 {
		rtk.errmsg("initial base station position error\n")
		return 0
	}
	/* time-interpolation of residuals (for post-processing) */
	if opt.IntPref > 0 {
		dt = rtk.InterpolationRes(time, obs[nu:], nr, nav, y[nu*nf*2:])
	}
	/* select common satellites between rover and base-station */
	if ns = SelSat(obs, azel, nu, nr, opt, sat[:], iu[:], ir[:]); ns <= 0 {
		rtk.errmsg("no common satellite\n")
		return 0
	}
	/* gdop rejection on the common-satellite geometry, mirroring the check
	   pntpos applies to single point positioning -- gated on the rover's
	   az/el from this epoch's single point solution (rtk.Ssat), since it is
	   the rover position being qualified and the rover slots of azel are
	   only filled by ZDRes further below */
	if opt.MaxGdop > 0.0 {
		azels := Zeros(2, ns)
		for i = 0; i < ns; i++ {
			azels[i*2] = rtk.Ssat[sat[i]-1].Azel[0]
			azels[1+i*2] = rtk.Ssat[sat[i]-1].Azel[1]
		}
		var dop [4]float64
		DOPs(ns, azels, opt.Elmin, dop[:])
		if dop[0] <= 0.0 || dop[0] > opt.MaxGdop {
			rtk.errmsg("gdop error ns=%d gdop=%.1f\n", ns, dop[0])
			return 0
		}
	}
	/* temporal update of states */
	rtk.UpdateState(obs, sat[:], iu[:], ir[:], ns, nav)

	Trace(4, "x(0)=")
	tracemat(4, rtk.X, 1, RNR(opt), 13, 4)

	xp = Mat(rtk.Nx, 1)
	Pp = Zeros(rtk.Nx, rtk.Nx)
	xa = Mat(rtk.Nx, 1)
	MatCpy(xp, rtk.X, rtk.Nx, 1)

	ny = ns*nf*2 + 2
	v = Mat(ny, 1)
	H = Zeros(rtk.Nx, ny)
	R = Mat(ny, ny)
	bias = Mat(rtk.Nx, 1)

	/* add 2 iterations for baseline-constraint moving-base */
	if opt.Mode == PMODE_MOVEB && opt.Baseline[0] > 0.0 {
		niter = opt.NoIter + 2
	} else {
		niter = opt.NoIter
	}
	for i = 0; i < niter; i++ {
		/* UD (undifferenced) residuals for rover */
		if ZDRes(0, obs, nu, rs, dts, fvar, svh[:], nav, xp, opt, 0, y, e, azel, freq) == 0 {
			rtk.errmsg("rover initial position error\n")
			stat = SOLQ_NONE
			break
		}
		/* DD (double-differenced) residuals and partial derivatives */
		if nv = rtk.DDRes(nav, dt, xp, Pp, sat[:], y, e, azel, freq, iu[:], ir[:], ns, v, H, R, vflg[:]); nv < 1 {
			rtk.errmsg("no double-differenced residual\n")
			stat = SOLQ_NONE
			break
		}
		/* measurement update via the selected filter kernel (EKF/UKF/PF) */
		MatCpy(Pp, rtk.P, rtk.Nx, rtk.Nx)
		x0 := [3]float64{xp[0], xp[1], xp[2]}
		rtk.Lambda, info = rtk.Kernel.MeasurementUpdate(xp, Pp, H, v, R, rtk.Nx, nv)
		if info != 0 {
			rtk.errmsg("filter error (info=%d)\n", info)
			stat = SOLQ_NONE
			break
		}
		Trace(5, "x(%d)=", i+1)
		tracemat(4, xp, 1, RNR(opt), 13, 4)

		/* stop iterating once the position increment is below 1e-4 m */
		dpos := [3]float64{xp[0] - x0[0], xp[1] - x0[1], xp[2] - x0[2]}
		if Norm(dpos[:], 3) < 1e-4 {
			break
		}
	}
	if stat != SOLQ_NONE && ZDRes(0, obs, nu, rs, dts, fvar, svh[:], nav, xp, opt, 0, y, e, azel, freq) != 0 {

		/* post-fit residuals for float solution */
		nv = rtk.DDRes(nav, dt, xp, Pp, sat[:], y, e, azel, freq, iu[:], ir[:], ns, v, nil, R, vflg[:])

		/* validation of float solution */
		if rtk.ValidPos(v, R, vflg[:], nv, 4.0) > 0 {

			/* update state and covariance matrix */
			MatCpy(rtk.X, xp, rtk.Nx, 1)
			MatCpy(rtk.P, Pp, rtk.Nx, rtk.Nx)

			/* update ambiguity control struct */
			rtk.Sol.Ns = 0
			for i = 0; i < ns; i++ {
				for f = 0; f < nf; f++ {
					if rtk.Ssat[sat[i]-1].Vsat[f] == 0 {
						continue
					}
					rtk.Ssat[sat[i]-1].Lock[f]++
					rtk.Ssat[sat[i]-1].Outc[f] = 0
					if f == 0 {
						rtk.Sol.Ns++ /* valid satellite count by L1 */
					}
				}
			}
			/* lack of valid satellites */
			if rtk.Sol.Ns < 4 {
				stat = SOLQ_NONE
			}
		} else {
			stat = SOLQ_NONE
		}
	}
	/* resolve integer ambiguity by LAMBDA */
	if stat != SOLQ_NONE && rtk.ResolveAmb_LAMBDA(bias, xa) > 1 {

		if ZDRes(0, obs, nu, rs, dts, fvar, svh[:], nav, xa, opt, 0, y, e, azel, freq) > 0 {

			/* post-fit reisiduals for fixed solution */
			nv = rtk.DDRes(nav, dt, xa, nil, sat[:], y, e, azel, freq, iu[:], ir[:], ns, v, nil, R, vflg[:])

			/* validation of fixed solution */
			if rtk.ValidPos(v, R, vflg[:], nv, 4.0) > 0 {

				/* hold integer ambiguity */
				if rtk.Nfix++; rtk.Nfix >= rtk.Opt.MinFix &&
					rtk.Opt.ModeAr == ARMODE_FIXHOLD {
					rtk.HoldAmb(xa)
				}
				stat = SOLQ_FIX
			}
		}
	}
	rtk.saveSolution(stat)
	rtk.updateEpochBookkeeping(obs, n, nf, stat, sat[:], iu[:], ns)

	if stat != SOLQ_NONE {
		rtk.Sol.Stat = uint8(stat)
		return 1
	}

	return 0
}

// saveSolution copies the winning state/covariance (fixed if stat==SOLQ_FIX,
// float otherwise) into Sol.Rr/Qr/Qv, resetting the continuous-fix counter
// whenever the epoch did not hold a fix.
func (rtk *Engine) saveSolution(stat int) {
	var i int
	if stat == SOLQ_FIX {
		for i = 0; i < 3; i++ {
			rtk.Sol.Rr[i] = rtk.Xa[i]
			rtk.Sol.Qr[i] = float32(rtk.Pa[i+i*rtk.Na])
		}
		rtk.Sol.Qr[3] = float32(rtk.Pa[1])
		rtk.Sol.Qr[4] = float32(rtk.Pa[1+2*rtk.Na])
		rtk.Sol.Qr[5] = float32(rtk.Pa[2])

		if rtk.Opt.Dynamics > 0 { /* velocity and covariance */
			for i = 3; i < 6; i++ {
				rtk.Sol.Rr[i] = rtk.Xa[i]
				rtk.Sol.Qv[i-3] = float32(rtk.Pa[i+i*rtk.Na])
			}
			rtk.Sol.Qv[3] = float32(rtk.Pa[4+3*rtk.Na])
			rtk.Sol.Qv[4] = float32(rtk.Pa[5+4*rtk.Na])
			rtk.Sol.Qv[5] = float32(rtk.Pa[5+3*rtk.Na])
		}
		return
	}
	for i = 0; i < 3; i++ {
		rtk.Sol.Rr[i] = rtk.X[i]
		rtk.Sol.Qr[i] = float32(rtk.P[i+i*rtk.Nx])
	}
	rtk.Sol.Qr[3] = float32(rtk.P[1])
	rtk.Sol.Qr[4] = float32(rtk.P[1+2*rtk.Nx])
	rtk.Sol.Qr[5] = float32(rtk.P[2])

	if rtk.Opt.Dynamics > 0 { /* velocity and covariance */
		for i = 3; i < 6; i++ {
			rtk.Sol.Rr[i] = rtk.X[i]
			rtk.Sol.Qv[i-3] = float32(rtk.P[i+i*rtk.Nx])
		}
		rtk.Sol.Qv[3] = float32(rtk.P[4+3*rtk.Nx])
		rtk.Sol.Qv[4] = float32(rtk.P[5+4*rtk.Nx])
		rtk.Sol.Qv[5] = float32(rtk.P[5+3*rtk.Nx])
	}
	rtk.Nfix = 0
}

// updateEpochBookkeeping refreshes the per-satellite carry-phase history,
// rover SNR, and fix/slip counters after an epoch, independent of whether
// it produced a usable solution.
func (rtk *Engine) updateEpochBookkeeping(obs []ObsD, n, nf, stat int, sat, iu []int, ns int) {
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < nf; j++ {
			if obs[i].L[j] == 0.0 {
				continue
			}
			rtk.Ssat[obs[i].Sat-1].Pt[obs[i].Rcv-1][j] = obs[i].Time
			rtk.Ssat[obs[i].Sat-1].Ph[obs[i].Rcv-1][j] = obs[i].L[j]
		}
	}
	for i = 0; i < ns; i++ {
		for j = 0; j < nf; j++ {

			/* output snr of rover receiver */
			rtk.Ssat[sat[i]-1].Snr[j] = obs[iu[i]].SNR[j]
		}
	}
	for i = 0; i < MAXSAT; i++ {
		for j = 0; j < nf; j++ {
			if rtk.Ssat[i].Fix[j] == 2 && stat != SOLQ_FIX {
				rtk.Ssat[i].Fix[j] = 1
			}
			if rtk.Ssat[i].Slip[j]&1 > 0 {
				rtk.Ssat[i].Slipc[j]++
			}
		}
	}
}


/* initialize RTK control ------------------------------------------------------
* initialize RTK control struct
* args   : rtk_t    *rtk    IO  TKk control/result struct
*          prcopt_t *opt    I   positioning options (see rtklib.h)
* return : none
*-----------------------------------------------------------------------------*/
func (rtk *Engine) Init(opt *PrcOpt) {
	var (
		sol0  Sol
		ambc0 AmbC
		ssat0 SSat
		i     int
	)

	Trace(4, "rtkinit :\n")

	rtk.Sol = sol0
	for i = 0; i < 6; i++ {
		rtk.Rb[i] = 0.0
	}
	rtk.Nx = RNX(opt)
	rtk.Na = RNR(opt)
	rtk.Tt = 0.0
	rtk.X = Zeros(rtk.Nx, 1)
	rtk.P = Zeros(rtk.Nx, rtk.Nx)
	rtk.Xa = Zeros(rtk.Na, 1)
	rtk.Pa = Zeros(rtk.Na, rtk.Na)
	rtk.Nfix = 0
	for i = 0; i < MAXSAT; i++ {
		rtk.Ambc[i] = ambc0
		rtk.Ssat[i] = ssat0
	}
	rtk.ErrBuf = ""
	rtk.Opt = *opt
	rtk.Kernel = NewFilterKernel(opt)
	rtk.HalfC = nil
	rtk.halfSet = make(map[int]bool)
}


/* free rtk control ------------------------------------------------------------
* free memory for rtk control struct
* args   : rtk_t    *rtk    IO  rtk control/result struct
* return : none
*-----------------------------------------------------------------------------*/
func (rtk *Engine) Free() {
	Trace(4, "rtkfree :\n")

	rtk.Nx, rtk.Na = 0, 0
	rtk.X = nil
	rtk.P = nil
	rtk.Xa = nil
	rtk.Pa = nil
}

// updateHalfPending keeps HalfC/halfSet in sync with sat's per-frequency
// Half flags: a satellite enters the pending set the epoch any frequency's
// half-cycle ambiguity goes unresolved (Half[k]==0) and leaves it once every
// tracked frequency reports resolved (Half[k]==1), so ResolveAmb_LAMBDA and
// any downstream consumer can list outstanding half-cycle corrections
// without rescanning the full Ssat table.
func (rtk *Engine) updateHalfPending(sat int) {
	pending := false
	for k := 0; k < RNF(&rtk.Opt); k++ {
		if rtk.Ssat[sat-1].Half[k] == 0 {
			pending = true
			break
		}
	}
	if pending {
		if !rtk.halfSet[sat] {
			rtk.halfSet[sat] = true
			rtk.HalfC = append(rtk.HalfC, sat)
		}
		return
	}
	if rtk.halfSet[sat] {
		delete(rtk.halfSet, sat)
		for i, s := range rtk.HalfC {
			if s == sat {
				rtk.HalfC = append(rtk.HalfC[:i], rtk.HalfC[i+1:]...)
				break
			}
		}
	}
}


/* precise positioning ---------------------------------------------------------
* input observation data and navigation message, compute rover position by
* precise positioning
* args   : rtk *Engine       IO  RTK control/result struct
*            rtk.sol       IO  solution
*                .time      O   solution time
*                .rr[]      IO  rover position/velocity
*                               (I:fixed mode,O:single mode)
*                .dtr[0]    O   receiver clock bias (s)
*                .dtr[1-5]  O   receiver GLO/GAL/BDS/IRN/QZS-GPS time offset (s)
*                .Qr[]      O   rover position covarinace
*                .stat      O   solution status (SOLQ_???)
*                .ns        O   number of valid satellites
*                .age       O   age of differential (s)
*                .ratio     O   ratio factor for ambiguity validation
*            rtk.rb[]      IO  base station position/velocity
*                               (I:relative mode,O:moving-base mode)
*            rtk.nx        I   number of all states
*            rtk.na        I   number of integer states
*            rtk.ns        O   number of valid satellites in use
*            rtk.tt        O   time difference between current and previous (s)
*            rtk.x[]       IO  float states pre-filter and post-filter
*            rtk.P[]       IO  float covariance pre-filter and post-filter
*            rtk.xa[]      O   fixed states after AR
*            rtk.Pa[]      O   fixed covariance after AR
*            rtk.ssat[s]   IO  satellite {s+1} status
*                .sys       O   system (SYS_???)
*                .az   [r]  O   azimuth angle   (rad) (r=0:rover,1:base)
*                .el   [r]  O   elevation angle (rad) (r=0:rover,1:base)
*                .vs   [r]  O   data valid single     (r=0:rover,1:base)
*                .resp [f]  O   freq(f+1) pseudorange residual (m)
*                .resc [f]  O   freq(f+1) carrier-phase residual (m)
*                .vsat [f]  O   freq(f+1) data vaild (0:invalid,1:valid)
*                .fix  [f]  O   freq(f+1) ambiguity flag
*                               (0:nodata,1:float,2:fix,3:hold)
*                .slip [f]  O   freq(f+1) cycle slip flag
*                               (bit8-7:rcv1 LLI, bit6-5:rcv2 LLI,
*                                bit2:parity unknown, bit1:slip)
*                .lock [f]  IO  freq(f+1) carrier lock count
*                .outc [f]  IO  freq(f+1) carrier outage count
*                .slipc[f]  IO  freq(f+1) cycle slip count
*                .rejc [f]  IO  freq(f+1) data reject count
*                .gf        IO  geometry-free phase (L1-L2) (m)
*                .gf2       IO  geometry-free phase (L1-L5) (m)
*            rtk.nfix      IO  number of continuous fixes of ambiguity
*            rtk.neb       IO  bytes of error message buffer
*            rtk.errbuf    IO  error message buffer
*            rtk.tstr      O   time string for debug
*            rtk.opt       I   processing options
*          obsd_t *obs      I   observation data for an epoch
*                               obs[i].rcv=1:rover,2:reference
*                               sorted by receiver and satellte
*          int    n         I   number of observation data
*          nav_t  *nav      I   navigation messages
* return : status (0:error exit,1:epoch processed; rtk.sol.stat holds the
*          solution status)
* notes  : before calling function, base station position rtk.sol.rb[] should
*          be properly set for relative mode except for moving-baseline
*-----------------------------------------------------------------------------*/
func (rtk *Engine) Step(obs []ObsD, n int, nav *Nav) int {
	var (
		solb      Sol
		time      Gtime
		i, nu, nr int
		msg       string
	)
	opt := &rtk.Opt

	Trace(4, "rtkpos  : time=%s n=%d\n", TimeStr(obs[0].Time, 3), n)
	Trace(4, "obs=\n")
	traceobs(4, obs, n)
	logEpoch(logrus.DebugLevel, obs[0].Time, fmt.Sprintf("step n=%d mode=%d", n, opt.Mode))

	/* set base staion position */
	if opt.RefPos <= POSOPT_RINEX && opt.Mode != PMODE_SINGLE &&
		opt.Mode != PMODE_MOVEB {
		for i = 0; i < 6; i++ {
			rtk.Rb[i] = 0.0
			if i < 3 {
				rtk.Rb[i] = opt.Rb[i]
			}
		}
	}
	/* count rover/base station observations */
	for nu = 0; nu < n && obs[nu].Rcv == 1; nu++ {
	}
	for nr = 0; nu+nr < n && obs[nu+nr].Rcv == 2; nr++ {
	}

	time = rtk.Sol.Time /* previous epoch */

	/* rover position by single point positioning */
	if PntPos(obs, nu, nav, &rtk.Opt, &rtk.Sol, nil, rtk.Ssat[:], &msg) == 0 {
		rtk.errmsg("point pos error (%s)\n", msg)

		if rtk.Opt.Dynamics == 0 {
			rtk.OutSolStat()
			return 0
		}
	}
	if time.Time != 0 {
		rtk.Tt = TimeDiff(rtk.Sol.Time, time)
	}

	/* single point positioning */
	if opt.Mode == PMODE_SINGLE {
		rtk.OutSolStat()
		return 1
	}
	/* suppress output of single solution */
	if opt.OutSingle == 0 {
		rtk.Sol.Stat = SOLQ_NONE
	}
	/* precise point positioning is out of scope for this engine */
	if opt.Mode >= PMODE_PPP_KINEMA {
		rtk.errmsg("ppp mode not supported\n")
		rtk.Sol.Stat = SOLQ_NONE
		rtk.OutSolStat()
		return 0
	}
	/* check number of data of base station and age of differential */
	if nr == 0 {
		rtk.errmsg("no base station observation data for rtk\n")
		rtk.OutSolStat()
		return 1
	}
	if opt.Mode == PMODE_MOVEB { /*  moving baseline */

		/* estimate position/velocity of base station */
		if PntPos(obs[+nu:], nr, nav, &rtk.Opt, &solb, nil, nil, &msg) == 0 {
			rtk.errmsg("base station position error (%s)\n", msg)
			return 0
		}
		rtk.Sol.Age = float32(TimeDiff(rtk.Sol.Time, solb.Time))

		if math.Abs(float64(rtk.Sol.Age)) > TTOL_MOVEB {
			rtk.errmsg("time sync error for moving-base (age=%.1f)\n", rtk.Sol.Age)
			return 0
		}
		for i = 0; i < 6; i++ {
			rtk.Rb[i] = solb.Rr[i]
		}

		/* time-synchronized position of base station */
		for i = 0; i < 3; i++ {
			rtk.Rb[i] += rtk.Rb[i+3] * float64(rtk.Sol.Age)
		}
	} else {
		rtk.Sol.Age = float32(TimeDiff(obs[0].Time, obs[nu].Time))

		if math.Abs(float64(rtk.Sol.Age)) > opt.MaxTmDiff {
			rtk.errmsg("age of differential error (age=%.1f)\n", rtk.Sol.Age)
			rtk.OutSolStat()
			return 1
		}
	}
	/* relative potitioning */
	rtk.RelativePos(obs, nu, nr, nav)
	rtk.OutSolStat()

	return 1
}
