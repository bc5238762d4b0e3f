/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

/* constants/macros ----------------------------------------------------------*/
/* number of parameters (pos,ionos,tropos,hw-bias,phase-bias,real,estimated) */
func RNF(opt *PrcOpt) int {
	if opt.IonoOpt == IONOOPT_IFLC {
		return 1
	} else {
		return opt.Nf
	}
}

func RNP(opt *PrcOpt) int {
	if opt.Dynamics != 0 {
		return 9
	} else {
		return 3
	}
}

func RNT(opt *PrcOpt) int {
	switch {
	case opt.TropOpt < TROPOPT_EST:
		return 0
	case opt.TropOpt < TROPOPT_ESTG:
		return 2
	default:
		return 6
	}
}

func RNL(opt *PrcOpt) int {
	if opt.GloModeAr != 2 {
		return 0
	}
	return NFREQGLO
}


func RNB(opt *PrcOpt) int {
	if opt.Mode <= PMODE_DGPS {
		return 0
	}
	return MAXSAT * RNF(opt)
}

func RNI(opt *PrcOpt) int {
	if opt.IonoOpt == IONOOPT_EST {
		return MAXSAT
	} else {
		return 0
	}
}


/* number of parameters (pos,ionos,tropos,hw-bias,phase-bias,real,estimated) */
func RNR(opt *PrcOpt) int { return RNP(opt) + RNI(opt) + RNT(opt) + RNL(opt) }

func RNX(opt *PrcOpt) int { return RNR(opt) + RNB(opt) }


/* state variable index */
func RII(s int, opt *PrcOpt) int    { return RNP(opt) + s - 1 }                   /* ionos (s:satellite no) */

func RIT(r int, opt *PrcOpt) int    { return RNP(opt) + RNI(opt) + RNT(opt)/2*r } /* tropos (r:0=rov,1:ref) */

func RIL(f int, opt *PrcOpt) int    { return RNP(opt) + RNI(opt) + RNT(opt) + f } /* receiver h/w bias */

func RIB(s, f int, opt *PrcOpt) int { return RNR(opt) + MAXSAT*f + s - 1 }        /* phase bias (s:satno,f:freq) */





/* select common satellites between rover and reference station --------------*/
func SelSat(obs []ObsD, azel []float64, nu, nr int, opt *PrcOpt, sat, iu, ir []int) int {
	var i, j, k int

	Trace(4, "selsat  : nu=%d nr=%d\n", nu, nr)

	for i, j = 0, nu; i < nu && j < nu+nr; i, j = i+1, j+1 {
		switch {
		case obs[i].Sat < obs[j].Sat:
			j--
		case obs[i].Sat > obs[j].Sat:
			i--
		case azel[1+j*2] >= opt.Elmin: /* elevation at base station */
			sat[k] = obs[i].Sat
			iu[k] = i
			ir[k] = j
			k++
			Trace(2, "(%2d) sat=%3d iu=%2d ir=%2d\n", k-1, obs[i].Sat, i, j)
		}
	}
	return k
}
