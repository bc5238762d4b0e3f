/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

/* index for SD to DD transformation matrix D --------------------------------*/
func (rtk *Engine) DDIndex(ix []int) int {
	var i, j, k, m, f, nb, na, nf int
	nf = RNF(&rtk.Opt)
	na = rtk.Na
	Trace(4, "ddidx   :\n")

	for i = 0; i < MAXSAT; i++ {
		for j = 0; j < NFREQ; j++ {
			rtk.Ssat[i].Fix[j] = 0
		}
	}
	for m = 0; m < 6; m++ { /* m=0:GPS/SBS,1:GLO,2:GAL,3:BDS,4:QZS,5:IRN */

		nofix := (m == 1 && rtk.Opt.GloModeAr == 0) || (m == 3 && rtk.Opt.BDSModeAr == 0)

		for f, k = 0, na; f < nf; f, k = f+1, k+MAXSAT {

			for i = k; i < k+MAXSAT; i++ {
				if rtk.X[i] == 0.0 || test_sys(int(rtk.Ssat[i-k].Sys), m) == 0 ||
					rtk.Ssat[i-k].Vsat[f] == 0 || rtk.Ssat[i-k].Half[f] == 0 {
					continue
				}
				if rtk.Ssat[i-k].Lock[f] > 0 && (rtk.Ssat[i-k].Slip[f]&2) == 0 &&
					rtk.Ssat[i-k].Azel[1] >= rtk.Opt.ElMaskAr && !nofix {
					rtk.Ssat[i-k].Fix[f] = 2 /* fix */
					break
				} else {
					rtk.Ssat[i-k].Fix[f] = 1
				}
			}
			for j = k; j < k+MAXSAT; j++ {
				if i == j || rtk.X[j] == 0.0 || test_sys(int(rtk.Ssat[j-k].Sys), m) == 0 ||
					rtk.Ssat[j-k].Vsat[f] == 0 {
					continue
				}
				if rtk.Ssat[j-k].Lock[f] > 0 && (rtk.Ssat[j-k].Slip[f]&2) == 0 &&
					rtk.Ssat[i-k].Vsat[f] > 0 &&
					rtk.Ssat[j-k].Azel[1] >= rtk.Opt.ElMaskAr && !nofix {
					ix[nb*2] = i   /* state index of ref bias */
					ix[nb*2+1] = j /* state index of target bias */
					nb++
					rtk.Ssat[j-k].Fix[f] = 2 /* fix */
				} else {
					rtk.Ssat[j-k].Fix[f] = 1
				}
			}
		}
	}
	return nb
}


// fixedBiasIndices collects the state indices of every fixed (Fix==2) bias
// for system m, frequency f, at or above minElev, into index and returns how
// many it found; RestoreAmb and HoldAmb both enumerate this same set, the
// latter additionally gating on the hold elevation mask and promoting each
// entry to the hold status (Fix=3) as it is collected.
func (rtk *Engine) fixedBiasIndices(m, f int, minElev float64, markHold bool, index []int) int {
	n := 0
	for i := 0; i < MAXSAT; i++ {
		if test_sys(int(rtk.Ssat[i].Sys), m) == 0 || rtk.Ssat[i].Fix[f] != 2 ||
			rtk.Ssat[i].Azel[1] < minElev {
			continue
		}
		index[n] = RIB(i+1, f, &rtk.Opt)
		n++
		if markHold {
			rtk.Ssat[i].Fix[f] = 3 /* hold */
		}
	}
	return n
}

/* restore SD (single-differenced) ambiguity ---------------------------------*/
func (rtk *Engine) RestoreAmb(bias []float64, nb int, xa []float64) {
	var (
		i, n, m, f, nv, nf int
		index              [MAXSAT]int
	)
	nf = RNF(&rtk.Opt)

	Trace(4, "restamb :\n")

	for i = 0; i < rtk.Nx; i++ {
		xa[i] = rtk.X[i]
	}
	for i = 0; i < rtk.Na; i++ {
		xa[i] = rtk.Xa[i]
	}

	for m = 0; m < 5; m++ {
		for f = 0; f < nf; f++ {

			n = rtk.fixedBiasIndices(m, f, 0, false, index[:])
			if n < 2 {
				continue
			}

			xa[index[0]] = rtk.X[index[0]]

			for i = 1; i < n; i++ {
				xa[index[i]] = xa[index[0]] - bias[nv]
				nv++
			}
		}
	}
}


/* hold integer ambiguity ----------------------------------------------------*/
func (rtk *Engine) HoldAmb(xa []float64) {
	var (
		v, H, R                      []float64
		i, n, m, f, info, nb, nv, nf int
		index                        [MAXSAT]int
	)
	nb = rtk.Nx - rtk.Na
	nf = RNF(&rtk.Opt)

	Trace(4, "holdamb :\n")

	v = Mat(nb, 1)
	H = Zeros(nb, rtk.Nx)

	for m = 0; m < 5; m++ {
		for f = 0; f < nf; f++ {

			n = rtk.fixedBiasIndices(m, f, rtk.Opt.ElMaskHold, true, index[:])
			/* constraint to fixed ambiguity */
			for i = 1; i < n; i++ {
				v[nv] = (xa[index[0]] - xa[index[i]]) - (rtk.X[index[0]] - rtk.X[index[i]])

				H[index[0]+nv*rtk.Nx] = 1.0
				H[index[i]+nv*rtk.Nx] = -1.0
				nv++
			}
		}
	}
	if nv > 0 {
		R = Zeros(nv, nv)
		for i = 0; i < nv; i++ {
			R[i+i*nv] = VAR_HOLDAMB
		}

		/* update states with constraints */
		if info = Filter(rtk.X, rtk.P, H, v, R, rtk.Nx, nv); info > 0 {
			rtk.errmsg("filter error (info=%d)\n", info)
		}
	}
}


/* resolve integer ambiguity by LAMBDA ---------------------------------------*/
func (rtk *Engine) ResolveAmb_LAMBDA(bias, xa []float64) int {
	var (
		opt                       *PrcOpt = &rtk.Opt
		i, j, nb, info, nx, na    int
		DP, y, b, db, Qb, Qab, QQ []float64
		s                         [2]float64
		ix                        []int
	)
	nx = rtk.Nx
	na = rtk.Na

	Trace(4, "resamb_LAMBDA : nx=%d\n", nx)

	rtk.Sol.Ratio = 0.0

	if rtk.Opt.Mode <= PMODE_DGPS || rtk.Opt.ModeAr == ARMODE_OFF || rtk.Opt.ThresAr[0] < 1.0 {
		return 0
	}
	/* index of SD to DD transformation matrix D */
	ix = IMat(nx, 2)
	if nb = rtk.DDIndex(ix); nb <= 0 {
		rtk.errmsg("no valid double-difference\n")
		return 0
	}
	y = Mat(nb, 1)
	DP = Mat(nb, nx-na)
	b = Mat(nb, 2)
	db = Mat(nb, 1)
	Qb = Mat(nb, nb)
	Qab = Mat(na, nb)
	QQ = Mat(na, nb)

	/* y=D*xc, Qb=D*Qc*D', Qab=Qac*D' */
	for i = 0; i < nb; i++ {
		y[i] = rtk.X[ix[i*2]] - rtk.X[ix[i*2+1]]
	}
	for j = 0; j < nx-na; j++ {
		for i = 0; i < nb; i++ {
			DP[i+j*nb] = rtk.P[ix[i*2]+(na+j)*nx] - rtk.P[ix[i*2+1]+(na+j)*nx]
		}
	}
	for j = 0; j < nb; j++ {
		for i = 0; i < nb; i++ {
			Qb[i+j*nb] = DP[i+(ix[j*2]-na)*nb] - DP[i+(ix[j*2+1]-na)*nb]
		}
	}
	for j = 0; j < nb; j++ {
		for i = 0; i < na; i++ {
			Qab[i+j*na] = rtk.P[i+ix[j*2]*nx] - rtk.P[i+ix[j*2+1]*nx]
		}
	}
	/* LAMBDA/MLAMBDA ILS (integer least-square) estimation */
	if info = Lambda(nb, 2, y, Qb, b, s[:]); info == 0 {
		Trace(2, "N(1)=")
		tracemat(4, b, 1, nb, 10, 3)
		Trace(2, "N(2)=")
		tracemat(4, b[nb:], 1, nb, 10, 3)

		rtk.Sol.Ratio = 0.0
		if s[0] > 0 {
			rtk.Sol.Ratio = float32(s[1] / s[0])
		}
		if rtk.Sol.Ratio > 999.9 {
			rtk.Sol.Ratio = 999.9
		}

		/* validation by popular ratio-test */
		if s[0] <= 0.0 || s[1]/s[0] >= opt.ThresAr[0] {

			/* transform float to fixed solution (xa=xa-Qab*Qb\(b0-b)) */
			for i = 0; i < na; i++ {
				rtk.Xa[i] = rtk.X[i]
				for j = 0; j < na; j++ {
					rtk.Pa[i+j*na] = rtk.P[i+j*nx]
				}
			}
			for i = 0; i < nb; i++ {
				bias[i] = b[i]
				y[i] -= b[i]
			}
			if MatInv(Qb, nb) == 0 {
				MatMul("NN", nb, 1, nb, 1.0, Qb, y, 0.0, db)
				MatMul("NN", na, 1, nb, -1.0, Qab, db, 1.0, rtk.Xa)

				/* covariance of fixed solution (Qa=Qa-Qab*Qb^-1*Qab') */
				MatMul("NN", na, nb, nb, 1.0, Qab, Qb, 0.0, QQ)
				MatMul("NT", na, na, nb, -1.0, QQ, Qab, 1.0, rtk.Pa)

				cs := 0.0
				if s[0] != 0.0 {
					cs = s[1] / s[0]
				}
				Trace(2, "resamb : validation ok (nb=%d ratio=%.2f s=%.2f/%.2f)\n",
					nb, cs, s[0], s[1])

				/* restore SD ambiguity */
				rtk.RestoreAmb(bias, nb, xa)
			} else {
				nb = 0
			}
		} else { /* validation failed */
			rtk.errmsg("ambiguity validation failed (nb=%d ratio=%.2f s=%.2f/%.2f)\n",
				nb, s[1]/s[0], s[0], s[1])
			nb = 0
		}
	} else {
		rtk.errmsg("lambda error (info=%d)\n", info)
		nb = 0
	}
	return nb /* number of ambiguities */
}


/* validation of solution ----------------------------------------------------*/
func (rtk *Engine) ValidPos(v, R []float64, vflg []int, nv int, thres float64) int {
	var (
		i, stat, sat1, sat2, ctype, freq int
		stype                            string
	)
	fact := thres * thres
	stat = 1

	Trace(4, "valpos  : nv=%d thres=%.1f\n", nv, thres)

	/* post-fit residual test */
	for i = 0; i < nv; i++ {
		if v[i]*v[i] <= fact*R[i+i*nv] {
			continue
		}
		sat1 = (vflg[i] >> 16) & 0xFF
		sat2 = (vflg[i] >> 8) & 0xFF
		ctype = (vflg[i] >> 4) & 0xF
		freq = vflg[i] & 0xF
		if ctype == 0 || ctype == 1 {
			stype = "L"
		} else {
			stype = "C"
		}
		rtk.errmsg("large residual (sat=%2d-%2d %s%d v=%6.3f sig=%.3f)\n",
			sat1, sat2, stype, freq+1, v[i], SQRT(R[i+i*nv]))
	}
	return stat
}
