/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"math"

	"github.com/sirupsen/logrus"
)

/* detect cycle slip by LLI --------------------------------------------------*/
func (rtk *Engine) DetectSlp_ll(obs []ObsD, i, rcv int) {
	var (
		slip, LLI uint32
		f, sat    int = 0, obs[i].Sat
	)

	Trace(4, "detslp_ll: i=%d rcv=%d\n", i, rcv)

	for f = 0; f < rtk.Opt.Nf; f++ {

		if obs[i].L[f] == 0.0 || math.Abs(TimeDiff(obs[i].Time, rtk.Ssat[sat-1].Pt[rcv-1][f])) < float64(DTTOL) {
			continue
		}
		/* restore previous LLI */
		if rcv == 1 {
			LLI = GetBitU(rtk.Ssat[sat-1].Slip[f:], 0, 2) /* rover */
		} else {
			LLI = GetBitU(rtk.Ssat[sat-1].Slip[f:], 2, 2) /* base  */
		}

		/* detect slip by cycle slip flag in LLI */
		if rtk.Tt >= 0.0 { /* forward */
			if obs[i].LLI[f]&1 == 1 {
				rtk.errmsg("slip detected forward  (sat=%2d rcv=%d F=%d LLI=%x)\n",
					sat, rcv, f+1, obs[i].LLI[f])
			}
			slip = uint32(obs[i].LLI[f])
		} else { /* backward */
			if LLI&1 == 1 {
				rtk.errmsg("slip detected backward (sat=%2d rcv=%d F=%d LLI=%x)\n",
					sat, rcv, f+1, LLI)
			}
			slip = LLI
		}
		/* detect slip by parity unknown flag transition in LLI */
		if ((LLI&2 > 0) && (obs[i].LLI[f]&2 == 0)) || ((LLI&2 == 0) && (obs[i].LLI[f]&2 > 0)) {
			rtk.errmsg("slip detected half-cyc (sat=%2d rcv=%d F=%d LLI=%x.%x)\n",
				sat, rcv, f+1, LLI, obs[i].LLI[f])
			slip |= 1
		}
		/* save current LLI */
		if rcv == 1 {
			SetBitU(rtk.Ssat[sat-1].Slip[f:], 0, 2, uint32(obs[i].LLI[f]))
		} else {
			SetBitU(rtk.Ssat[sat-1].Slip[f:], 2, 2, uint32(obs[i].LLI[f]))
		}

		/* save slip and half-cycle valid flag */
		rtk.Ssat[sat-1].Slip[f] |= uint8(slip)
		rtk.Ssat[sat-1].Half[f] = 1
		if obs[i].LLI[f]&2 > 0 {
			rtk.Ssat[sat-1].Half[f] = 0
		}
		if slip&1 == 1 {
			logSat(logrus.DebugLevel, obs[i].Time, sat, "cycle slip (LLI)")
		}
	}
}


/* detect cycle slip by geometry free phase jump -----------------------------*/
func (rtk *Engine) DetectSlp_gf(obs []ObsD, i, j int, nav *Nav) {
	var (
		k, sat int = 0, obs[i].Sat
		g0, g1 float64
	)

	Trace(4, "detslp_gf: i=%d j=%d\n", i, j)

	for k = 1; k < rtk.Opt.Nf; k++ {
		if g1 = GeometryFreeObs(obs, i, j, k, nav); g1 == 0.0 {
			return
		}

		g0 = rtk.Ssat[sat-1].Gf[k-1]
		rtk.Ssat[sat-1].Gf[k-1] = g1

		if g0 != 0.0 && math.Abs(g1-g0) > rtk.Opt.ThresSlip {
			rtk.Ssat[sat-1].Slip[0] |= 1
			rtk.Ssat[sat-1].Slip[k] |= 1
			rtk.errmsg("slip detected GF jump (sat=%2d L1-L%d GF=%.3f %.3f)\n",
				sat, k+1, g0, g1)
		}
	}
}


/* detect cycle slip by doppler and phase difference -------------------------*/
func (rtk *Engine) DetectSlp_dop(obs []ObsD, i, rcv int, nav *Nav) {
	// #if 0 /* detection with doppler disabled because of clock-jump issue (v.2.3.0) */
	//     int f,sat=obs[i].sat;
	//     double tt,dph,dpt,lam,thres;

	//     trace(3,"detslp_dop: i=%d rcv=%d\n",i,rcv);

	//     for (f=0;f<rtk.opt.nf;f++) {
	//         if (obs[i].L[f]==0.0||obs[i].D[f]==0.0||rtk.ph[rcv-1][sat-1][f]==0.0) {
	//             continue;
	//         }
	//         if (fabs(tt=timediff(obs[i].time,rtk.pt[rcv-1][sat-1][f]))<DTTOL) continue;
	//         if ((lam=nav.lam[sat-1][f])<=0.0) continue;

	//         /* cycle slip threshold (cycle) */
	//         thres=MAXACC*tt*tt/2.0/lam+rtk.opt.err[4]*fabs(tt)*4.0;

	//         /* phase difference and doppler x time (cycle) */
	//         dph=obs[i].L[f]-rtk.ph[rcv-1][sat-1][f];
	//         dpt=-obs[i].D[f]*tt;

	//         if (fabs(dph-dpt)<=thres) continue;

	//         rtk.slip[sat-1][f]|=1;

	//         rtk.errmsg("slip detected (sat=%2d rcv=%d L%d=%.3f %.3f thres=%.3f)\n",
	//                sat,rcv,f+1,dph,dpt,thres);
	//     }
	// #endif
}
