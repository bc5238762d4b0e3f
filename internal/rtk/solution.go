/*------------------------------------------------------------------------------
* solution.go : solution output formatting
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"fmt"
	"math"
	"os"
	"strings"
)

const (
	NMEA_TID = "GN" /* NMEA talker ID for RMC and GGA sentences */
	MAXFIELD = 64   /* max number of fields in a record */
	MAXNMEA  = 256  /* max length of nmea sentence */
	KNOT2M   = 0.514444444 /* m/knot */
)

var (
	nmea_sys []int = []int{ /* NMEA systems */
		SYS_GPS | SYS_SBS, SYS_GLO, SYS_GAL, SYS_CMP, SYS_QZS, SYS_IRN, 0}
	nmea_tid []string = []string{ /* NMEA talker IDs [2] */
		"GP", "GL", "GA", "GB", "GQ", "GI", ""}
	nmea_sid []int = []int{ /* NMEA system IDs [1] table 21 */
		1, 2, 3, 4, 5, 6, 0}
	nmea_solq []int = []int{ /* NMEA GPS quality indicator [1] */
		SOLQ_NONE, SOLQ_SINGLE, SOLQ_DGPS, SOLQ_PPP, SOLQ_FIX,
		SOLQ_FLOAT, SOLQ_DR, SOLQ_NONE, SOLQ_NONE, SOLQ_NONE}
)

func opt2sep(opt *SolOpt) string {
	if strings.Compare(opt.Sep, "\\t") == 0 {
		return "\t"
	}
	return opt.Sep
}

/* sqrt of covariance --------------------------------------------------------*/
func sqvar(covar float64) float64 {
	if covar < 0.0 {
		return -math.Sqrt(-covar)
	}
	return math.Sqrt(covar)
}

/* solution to covariance ----------------------------------------------------*/
func (sol *Sol) Sol2Cov(P []float64) {
	P[0] = float64(sol.Qr[0])                           /* xx or ee */
	P[4] = float64(sol.Qr[1])                           /* yy or nn */
	P[8] = float64(sol.Qr[2])                           /* zz or uu */
	P[1], P[3] = float64(sol.Qr[3]), float64(sol.Qr[3]) /* xy or en */
	P[5], P[7] = float64(sol.Qr[4]), float64(sol.Qr[4]) /* yz or nu */
	P[2], P[6] = float64(sol.Qr[5]), float64(sol.Qr[5]) /* zx or ue */
}

/* solution to velocity covariance -------------------------------------------*/
func (sol *Sol) Sol2CovarianceVel(P []float64) {
	P[0] = float64(sol.Qv[0])                           /* xx */
	P[4] = float64(sol.Qv[1])                           /* yy */
	P[8] = float64(sol.Qv[2])                           /* zz */
	P[1], P[3] = float64(sol.Qv[3]), float64(sol.Qv[3]) /* xy */
	P[5], P[7] = float64(sol.Qv[4]), float64(sol.Qv[4]) /* yz */
	P[2], P[6] = float64(sol.Qv[5]), float64(sol.Qv[5]) /* zx */
}

/* output solution as the form of x/y/z-ecef ---------------------------------*/
func OutEcef(buff *string, s string, sol *Sol, opt *SolOpt) int {
	sep := opt2sep(opt)

	Trace(4, "outecef:\n")
	p := *buff
	p += fmt.Sprintf("%s%s%14.4f%s%14.4f%s%14.4f%s%3d%s%3d%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%6.2f%s%6.1f",
		s, sep, sol.Rr[0], sep, sol.Rr[1], sep, sol.Rr[2], sep, sol.Stat, sep,
		sol.Ns, sep, SQRT32(sol.Qr[0]), sep, SQRT32(sol.Qr[1]), sep,
		SQRT32(sol.Qr[2]), sep, sqvar(float64(sol.Qr[3])), sep, sqvar(float64(sol.Qr[4])), sep,
		sqvar(float64(sol.Qr[5])), sep, sol.Age, sep, sol.Ratio)

	if opt.OutVel > 0 { /* output velocity */
		p += fmt.Sprintf("%s%10.5f%s%10.5f%s%10.5f%s%9.5f%s%8.5f%s%8.5f%s%8.5f%s%8.5f%s%8.5f",
			sep, sol.Rr[3], sep, sol.Rr[4], sep, sol.Rr[5], sep,
			SQRT32(sol.Qv[0]), sep, SQRT32(sol.Qv[1]), sep, SQRT32(sol.Qv[2]),
			sep, sqvar(float64(sol.Qv[3])), sep, sqvar(float64(sol.Qv[4])), sep,
			sqvar(float64(sol.Qv[5])))
	}
	p += "\r\n"

	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution as the form of lat/lon/height -----------------------------*/
func (sol *Sol) OutSolPos(buff *string, s string, opt *SolOpt) int {
	var (
		pos, vel, dms1, dms2 [3]float64
		P, Q                 [9]float64
	)
	sep := opt2sep(opt)
	p := *buff

	Trace(4, "outpos  :\n")

	Ecef2Pos(sol.Rr[:], pos[:])
	sol.Sol2Cov(P[:])
	Cov2Enu(pos[:], P[:], Q[:])
	if opt.Height == 1 { /* geodetic height */
		pos[2] -= GeoidH(pos[:])
	}
	if opt.DegF > 0 {
		Deg2Dms(pos[0]*R2D, dms1[:], 5)
		Deg2Dms(pos[1]*R2D, dms2[:], 5)
		p += fmt.Sprintf("%s%s%4.0f%s%02.0f%s%08.5f%s%4.0f%s%02.0f%s%08.5f", s, sep,
			dms1[0], sep, dms1[1], sep, dms1[2], sep, dms2[0], sep, dms2[1], sep,
			dms2[2])
	} else {
		p += fmt.Sprintf("%s%s%14.9f%s%14.9f", s, sep, pos[0]*R2D, sep, pos[1]*R2D)
	}
	p += fmt.Sprintf("%s%10.4f%s%3d%s%3d%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%6.2f%s%6.1f",
		sep, pos[2], sep, sol.Stat, sep, sol.Ns, sep, SQRT(Q[4]), sep,
		SQRT(Q[0]), sep, SQRT(Q[8]), sep, sqvar(Q[1]), sep, sqvar(Q[2]),
		sep, sqvar(Q[5]), sep, sol.Age, sep, sol.Ratio)

	if opt.OutVel > 0 { /* output velocity */
		sol.Sol2CovarianceVel(P[:])
		Ecef2Enu(pos[:], sol.Rr[3:], vel[:])
		Cov2Enu(pos[:], P[:], Q[:])
		p += fmt.Sprintf("%s%10.5f%s%10.5f%s%10.5f%s%9.5f%s%8.5f%s%8.5f%s%8.5f%s%8.5f%s%8.5f",
			sep, vel[1], sep, vel[0], sep, vel[2], sep, SQRT(Q[4]), sep,
			SQRT(Q[0]), sep, SQRT(Q[8]), sep, sqvar(Q[1]), sep, sqvar(Q[2]),
			sep, sqvar(Q[5]))
	}
	p += "\r\n"
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution as the form of e/n/u-baseline -----------------------------*/
func (sol *Sol) OutSolEnu(buff *string, s string, rb []float64, opt *SolOpt) int {
	var (
		pos, rr, enu [3]float64
		P, Q         [9]float64
		sep          = opt2sep(opt)
	)
	p := *buff

	Trace(4, "outenu  :\n")

	for i := 0; i < 3; i++ {
		rr[i] = sol.Rr[i] - rb[i]
	}
	Ecef2Pos(rb, pos[:])
	sol.Sol2Cov(P[:])
	Cov2Enu(pos[:], P[:], Q[:])
	Ecef2Enu(pos[:], rr[:], enu[:])
	p += fmt.Sprintf("%s%s%14.4f%s%14.4f%s%14.4f%s%3d%s%3d%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%8.4f%s%6.2f%s%6.1f\r\n",
		s, sep, enu[0], sep, enu[1], sep, enu[2], sep, sol.Stat, sep, sol.Ns, sep,
		SQRT(Q[0]), sep, SQRT(Q[4]), sep, SQRT(Q[8]), sep, sqvar(Q[1]),
		sep, sqvar(Q[5]), sep, sqvar(Q[2]), sep, sol.Age, sep, sol.Ratio)
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution in the form of NMEA RMC sentence --------------------------*/
func (sol *Sol) OutSolNmeaRmc(buff *string) int {
	dirp := 0.0
	var (
		time                  Gtime
		ep                    [6]float64
		pos, enuv, dms1, dms2 [3]float64
		vel, dir, amag        float64
		i                     int
		sum                   uint8
		emag, mode, status    string = "E", "A", "V"
	)
	p := *buff

	Trace(4, "outnmea_rmc:\n")

	if sol.Stat <= SOLQ_NONE {
		p += fmt.Sprintf("$%sRMC,,,,,,,,,,,,,", NMEA_TID)
		for i = 1; i < len(p); i++ {
			sum ^= p[i]
		}

		p += fmt.Sprintf("*%02X%c%c", sum, 0x0D, 0x0A)
		n := len(p) - len(*buff)
		*buff = p
		return n
	}
	time = GpsT2Utc(sol.Time)
	if time.Sec >= 0.995 {
		time.Time++
		time.Sec = 0.0
	}
	Time2Epoch(time, ep[:])
	Ecef2Pos(sol.Rr[:], pos[:])
	Ecef2Enu(pos[:], sol.Rr[3:], enuv[:])
	vel = Norm(enuv[:], 3)
	if vel >= 1.0 {
		dir = math.Atan2(enuv[0], enuv[1]) * R2D
		if dir < 0.0 {
			dir += 360.0
		}
		dirp = dir
	} else {
		dir = dirp
	}
	switch sol.Stat {
	case SOLQ_DGPS, SOLQ_SBAS:
		mode = "D"
	case SOLQ_FLOAT, SOLQ_FIX:
		mode = "R"
	case SOLQ_PPP:
		mode = "P"
	}
	Deg2Dms(math.Abs(pos[0])*R2D, dms1[:], 7)
	Deg2Dms(math.Abs(pos[1])*R2D, dms2[:], 7)
	var pos1, pos2 string
	if pos[0] >= 0 {
		pos1 = "N"
	} else {
		pos1 = "S"
	}
	if pos[1] >= 0 {
		pos2 = "E"
	} else {
		pos2 = "W"
	}
	p += fmt.Sprintf("$%sRMC,%02.0f%02.0f%05.2f,A,%02.0f%010.7f,%s,%03.0f%010.7f,%s,%4.2f,%4.2f,%02.0f%02.0f%02d,%.1f,%s,%s,%s",
		NMEA_TID, ep[3], ep[4], ep[5], dms1[0], dms1[1]+dms1[2]/60.0,
		pos1, dms2[0], dms2[1]+dms2[2]/60.0, pos2,
		vel/KNOT2M, dir, ep[2], ep[1], int(math.Mod(ep[0], 100.0)), amag, emag, mode, status)
	for i = 1; i < len(p); i++ {
		sum ^= p[i]
	}

	p += fmt.Sprintf("*%02X\r\n", sum)
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution in the form of NMEA GGA sentence --------------------------*/
func (sol *Sol) OutSolNmeaGga(buff *string) int {
	var (
		time            Gtime
		h, dop          float64 = 0.0, 1.0
		ep              [6]float64
		pos, dms1, dms2 [3]float64
		solq, refid     int = 0, 0
		sum             uint8
		i               int
	)
	p := *buff

	Trace(4, "outnmea_gga:\n")

	if sol.Stat <= SOLQ_NONE {
		p += fmt.Sprintf("$%sGGA,,,,,,,,,,,,,,", NMEA_TID)
		for i = 1; i < len(p); i++ {
			sum ^= p[i]
		}
		p += fmt.Sprintf("*%02X%c%c", sum, 0x0D, 0x0A)
		n := len(p) - len(*buff)
		*buff = p
		return n
	}
	for solq = 0; solq < 8; solq++ {
		if nmea_solq[solq] == int(sol.Stat) {
			break
		}
	}
	if solq >= 8 {
		solq = 0
	}
	time = GpsT2Utc(sol.Time)
	if time.Sec >= 0.995 {
		time.Time++
		time.Sec = 0.0
	}
	Time2Epoch(time, ep[:])
	Ecef2Pos(sol.Rr[:], pos[:])
	h = GeoidH(pos[:])
	Deg2Dms(math.Abs(pos[0])*R2D, dms1[:], 7)
	Deg2Dms(math.Abs(pos[1])*R2D, dms2[:], 7)
	var pos1, pos2 string
	if pos[0] >= 0 {
		pos1 = "N"
	} else {
		pos1 = "S"
	}
	if pos[1] >= 0 {
		pos2 = "E"
	} else {
		pos2 = "W"
	}
	p += fmt.Sprintf("$%sGGA,%02.0f%02.0f%05.2f,%02.0f%010.7f,%s,%03.0f%010.7f,%s,%d,%02d,%.1f,%.3f,M,%.3f,M,%.1f,%04d",
		NMEA_TID, ep[3], ep[4], ep[5], dms1[0], dms1[1]+dms1[2]/60.0,
		pos1, dms2[0], dms2[1]+dms2[2]/60.0, pos2,
		solq, sol.Ns, dop, pos[2]-h, h, sol.Age, refid)
	for i = 1; i < len(p); i++ {
		sum ^= p[i]
	}
	p += fmt.Sprintf("*%02X\r\n", sum)
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution in the form of NMEA GSA sentences -------------------------*/
func (sol *Sol) OutSolNmeaGsa(buff *string, ssat []SSat) int {
	var (
		azel                          []float64 = make([]float64, MAXSAT*2)
		dop                           [4]float64
		sum                           uint8
		j, sys, prn, nsat, mask, nsys int
		sats                          [MAXSAT]int
	)
	p := *buff

	Trace(4, "outnmea_gsa:\n")

	for i := 0; i < MAXSAT; i++ {
		if ssat[i].Vs == 0 {
			continue
		}
		sys = SatSys(i+1, nil)
		if sys&mask == 0 {
			nsys++
		} /* # of systems */
		mask |= sys
		azel[2*nsat] = float64(ssat[i].Azel[0])
		azel[2*nsat+1] = float64(ssat[i].Azel[1])
		sats[nsat] = i + 1
		nsat++
	}
	DOPs(nsat, azel, 0.0, dop[:])

	for i := 0; i < len(nmea_sys) && nmea_sys[i] > 0; i++ {
		for j, nsat = 0, 0; j < MAXSAT && nsat < 12; j++ {
			if SatSys(j+1, nil)&nmea_sys[i] == 0 {
				continue
			}
			if ssat[j].Vs > 0 {
				sats[nsat] = j + 1
				nsat++
			}
		}
		if nsat > 0 {

			var s1 string
			if nsys > 1 {
				s1 = "GN"
			} else {
				s1 = nmea_tid[i]
			}
			var d1 int
			if sol.Stat > 0 {
				d1 = 3
			} else {
				d1 = 1
			}
			p += fmt.Sprintf("$%sGSA,A,%d", s1, d1)
			for j = 0; j < 12; j++ {
				sys = SatSys(sats[j], &prn)
				switch sys {
				case SYS_SBS:
					prn -= 87 /* SBS: 33-64 */
				case SYS_GLO:
					prn += 64 /* GLO: 65-99 */
				case SYS_QZS:
					prn -= 192
				} /* QZS: 01-10 */
				if j < nsat {
					p += fmt.Sprintf(",%02d", prn)
				} else {
					p += ","
				}
			}
			p += fmt.Sprintf(",%3.1f,%3.1f,%3.1f,%d", dop[1], dop[2], dop[3],
				nmea_sid[i])
			for k := 1; k < len(p); k++ {
				sum ^= p[k]
			}
			p += fmt.Sprintf("*%02X\r\n", sum)
		}
	}
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution in the form of NMEA GSV sentences -------------------------*/
func (sol *Sol) OutSolNmeaGsv(buff *string, ssat []SSat) int {
	var (
		az, el, snr                      float64
		i, j, k, n, nsat, nmsg, prn, sys int
		sats                             [MAXSAT]int
		sum                              uint8
	)
	p := *buff

	Trace(4, "outnmea_gsv:\n")

	for i = 0; i < len(nmea_sys) && nmea_sys[i] > 0; i++ {
		for j, nsat = 0, 0; j < MAXSAT && nsat < 36; j++ {
			if SatSys(j+1, nil)&nmea_sys[i] == 0 {
				continue
			}
			if ssat[j].Azel[1] > 0.0 {
				sats[nsat] = j + 1
				nsat++
			}
		}
		nmsg = (nsat + 3) / 4

		for j, n = 0, 0; j < nmsg; j++ {

			p += fmt.Sprintf("$%sGSV,%d,%d,%02d", nmea_tid[i], nmsg, j+1, nsat)
			for k = 0; k < 4; k++ {
				if n < nsat {
					sys = SatSys(sats[n], &prn)
					switch sys {
					case SYS_SBS:
						prn -= 87 /* SBS: 33-64 */
					case SYS_GLO:
						prn += 64 /* GLO: 65-99 */
					case SYS_QZS:
						prn -= 192
					} /* QZS: 01-10 */
					az = float64(ssat[sats[n]-1].Azel[0]) * R2D
					if az < 0.0 {
						az += 360.0
					}
					el = float64(ssat[sats[n]-1].Azel[1]) * R2D
					snr = float64(float32(ssat[sats[n]-1].Snr[0]) * SNR_UNIT)
					p += fmt.Sprintf(",%02d,%02.0f,%03.0f,%02.0f", prn, el, az, snr)
				} else {
					p += ",,,,"
				}
				n++
			}
			p += ",0" /* all signals */
			for k := 1; k < len(p); k++ {
				sum ^= p[k]
			}
			p += fmt.Sprintf("*%02X\r\n", sum)
		}
	}
	n = len(p) - len(*buff)
	*buff = p
	return n
}

/* output processing options ---------------------------------------------------
* output processing options to buffer
* args   : uint8_t *buff    IO  output buffer
*          prcopt_t *opt    I   processing options
* return : number of output bytes
*-----------------------------------------------------------------------------*/
func OutPrcOpts(buff *string, opt *PrcOpt) int {
	var (
		sys []int = []int{
			SYS_GPS, SYS_GLO, SYS_GAL, SYS_QZS, SYS_CMP, SYS_IRN, SYS_SBS, 0}
		s1 []string = []string{
			"Single", "DGPS", "Kinematic", "Static", "Moving-Base", "Fixed",
			"PPP Kinematic", "PPP Static", "PPP Fixed", "", "", ""}
		s2 []string = []string{
			"L1", "L1+2", "L1+2+3", "L1+2+3+4", "L1+2+3+4+5", "L1+2+3+4+5+6", "", "", ""}
		s3 []string = []string{
			"Forward", "Backward", "Combined", "", "", ""}
		s4 []string = []string{
			"OFF", "Broadcast", "SBAS", "Iono-Free LC", "Estimate TEC", "IONEX TEC",
			"QZSS Broadcast", "", "", "", ""}
		s5 []string = []string{
			"OFF", "Saastamoinen", "SBAS", "Estimate ZTD", "Estimate ZTD+Grad", "", "", ""}
		s6 []string = []string{
			"Broadcast", "Precise", "Broadcast+SBAS", "Broadcast+SSR APC",
			"Broadcast+SSR CoM", "", "", ""}
		s7 []string = []string{
			"GPS", "GLONASS", "Galileo", "QZSS", "BDS", "NavIC", "SBAS", "", "", ""}
		s8 []string = []string{
			"OFF", "Continuous", "Instantaneous", "Fix and Hold", "", "", ""}
		s9 []string = []string{
			"OFF", "ON", "", "", ""}
		i int
	)
	p := *buff

	Trace(4, "outprcopts:\n")

	p += fmt.Sprintf("%s pos mode  : %s\r\n", COMMENTH, s1[opt.Mode])

	if PMODE_DGPS <= opt.Mode && opt.Mode <= PMODE_FIXED {
		p += fmt.Sprintf("%s freqs     : %s\r\n", COMMENTH, s2[opt.Nf-1])
	}
	if opt.Mode > PMODE_SINGLE {
		p += fmt.Sprintf("%s solution  : %s\r\n", COMMENTH, s3[opt.SolType])
	}
	p += fmt.Sprintf("%s elev mask : %.1f deg\r\n", COMMENTH, opt.Elmin*R2D)
	if opt.Mode > PMODE_SINGLE {
		var s string
		if opt.Dynamics > 0 {
			s = "on"
		} else {
			s = "off"
		}
		p += fmt.Sprintf("%s dynamics  : %s\r\n", COMMENTH, s)
		if opt.TideCorr > 0 {
			s = "on"
		} else {
			s = "off"
		}
		p += fmt.Sprintf("%s tidecorr  : %s\r\n", COMMENTH, s)
	}
	if opt.Mode <= PMODE_FIXED {
		p += fmt.Sprintf("%s ionos opt : %s\r\n", COMMENTH, s4[opt.IonoOpt])
	}
	p += fmt.Sprintf("%s tropo opt : %s\r\n", COMMENTH, s5[opt.TropOpt])
	p += fmt.Sprintf("%s ephemeris : %s\r\n", COMMENTH, s6[opt.SatEph])
	p += fmt.Sprintf("%s navi sys  :", COMMENTH)
	for i = 0; sys[i] > 0; i++ {
		if opt.NavSys&sys[i] > 0 {
			p += fmt.Sprintf(" %s", s7[i])
		}
	}
	p += "\r\n"
	if PMODE_KINEMA <= opt.Mode && opt.Mode <= PMODE_FIXED {
		p += fmt.Sprintf("%s amb res   : %s\r\n", COMMENTH, s8[opt.ModeAr])
		if opt.NavSys&SYS_GLO > 0 {
			p += fmt.Sprintf("%s amb glo   : %s\r\n", COMMENTH, s9[opt.GloModeAr])
		}
		if opt.ThresAr[0] > 0.0 {
			p += fmt.Sprintf("%s val thres : %.1f\r\n", COMMENTH, opt.ThresAr[0])
		}
	}
	if opt.Mode == PMODE_MOVEB && opt.Baseline[0] > 0.0 {
		p += fmt.Sprintf("%s baseline  : %.4f %.4f m\r\n", COMMENTH,
			opt.Baseline[0], opt.Baseline[1])
	}
	for i = 0; i < 2; i++ {
		if opt.Mode == PMODE_SINGLE || (i >= 1 && opt.Mode > PMODE_FIXED) {
			continue
		}
		p += fmt.Sprintf("%s antenna%d  : %-21s (%7.4f %7.4f %7.4f)\r\n", COMMENTH,
			i+1, opt.AntType[i], opt.AntDel[i][0], opt.AntDel[i][1],
			opt.AntDel[i][2])
	}
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution header ------------------------------------------------------
* output solution header to buffer
* args   : uint8_t *buff    IO  output buffer
*          solopt_t *opt    I   solution options
* return : number of output bytes
*-----------------------------------------------------------------------------*/
func OutSolHeader(buff *string, opt *SolOpt) int {
	var (
		s1    []string = []string{"WGS84", "Tokyo"}
		s2    []string = []string{"ellipsoidal", "geodetic"}
		s3    []string = []string{"GPST", "UTC ", "JST "}
		timeu int
		leg1  string = "Q=1:fix,2:float,3:sbas,4:dgps,5:single,6:ppp"
		leg2  string = "ns=# of satellites"
	)
	p := *buff
	sep := opt2sep(opt)
	if opt.TimeU < 0 {
		timeu = 0
	} else {
		if opt.TimeU > 20 {
			timeu = 20
		} else {
			timeu = opt.TimeU
		}
	}

	Trace(4, "outsolheads:\n")

	if opt.Posf == SOLF_NMEA || opt.Posf == SOLF_STAT || opt.Posf == SOLF_GSIF {
		return 0
	}
	if opt.OutHead > 0 {
		p += fmt.Sprintf("%s (", COMMENTH)
		switch opt.Posf {
		case SOLF_XYZ:
			p += "x/y/z-ecef=WGS84"
		case SOLF_ENU:
			p += "e/n/u-baseline=WGS84"
		default:
			p += fmt.Sprintf("lat/lon/height=%s/%s", s1[opt.Datum], s2[opt.Height])
		}
		p += fmt.Sprintf(",%s,%s)\r\n", leg1, leg2)
	}
	var tmf int = 8
	if opt.TimeF > 0 {
		tmf = 16
	}
	p += fmt.Sprintf("%s  %-*s%s", COMMENTH, tmf+timeu+1, s3[opt.TimeS], sep)

	switch opt.Posf {
	case SOLF_LLH: /* lat/lon/hgt */
		if opt.DegF > 0 {
			p += fmt.Sprintf("%16s%s%16s%s%10s%s%3s%s%3s%s%8s%s%8s%s%8s%s%8s%s%8s%s%8s%s%6s%s%6s",
				"latitude(d'\")", sep, "longitude(d'\")", sep, "height(m)",
				sep, "Q", sep, "ns", sep, "sdn(m)", sep, "sde(m)", sep, "sdu(m)",
				sep, "sdne(m)", sep, "sdeu(m)", sep, "sdue(m)", sep, "age(s)",
				sep, "ratio")
		} else {
			p += fmt.Sprintf("%14s%s%14s%s%10s%s%3s%s%3s%s%8s%s%8s%s%8s%s%8s%s%8s%s%8s%s%6s%s%6s",
				"latitude(deg)", sep, "longitude(deg)", sep, "height(m)", sep,
				"Q", sep, "ns", sep, "sdn(m)", sep, "sde(m)", sep, "sdu(m)", sep,
				"sdne(m)", sep, "sdeu(m)", sep, "sdun(m)", sep, "age(s)", sep,
				"ratio")
		}
		if opt.OutVel > 0 {
			p += fmt.Sprintf("%s%10s%s%10s%s%10s%s%9s%s%8s%s%8s%s%8s%s%8s%s%8s",
				sep, "vn(m/s)", sep, "ve(m/s)", sep, "vu(m/s)", sep, "sdvn", sep,
				"sdve", sep, "sdvu", sep, "sdvne", sep, "sdveu", sep, "sdvun")
		}
	case SOLF_XYZ: /* x/y/z-ecef */
		p += fmt.Sprintf("%14s%s%14s%s%14s%s%3s%s%3s%s%8s%s%8s%s%8s%s%8s%s%8s%s%8s%s%6s%s%6s",
			"x-ecef(m)", sep, "y-ecef(m)", sep, "z-ecef(m)", sep, "Q", sep, "ns",
			sep, "sdx(m)", sep, "sdy(m)", sep, "sdz(m)", sep, "sdxy(m)", sep,
			"sdyz(m)", sep, "sdzx(m)", sep, "age(s)", sep, "ratio")

		if opt.OutVel > 0 {
			p += fmt.Sprintf("%s%10s%s%10s%s%10s%s%9s%s%8s%s%8s%s%8s%s%8s%s%8s",
				sep, "vx(m/s)", sep, "vy(m/s)", sep, "vz(m/s)", sep, "sdvx", sep,
				"sdvy", sep, "sdvz", sep, "sdvxy", sep, "sdvyz", sep, "sdvzx")
		}
	case SOLF_ENU: /* e/n/u-baseline */
		p += fmt.Sprintf("%14s%s%14s%s%14s%s%3s%s%3s%s%8s%s%8s%s%8s%s%8s%s%8s%s%8s%s%6s%s%6s",
			"e-baseline(m)", sep, "n-baseline(m)", sep, "u-baseline(m)", sep,
			"Q", sep, "ns", sep, "sde(m)", sep, "sdn(m)", sep, "sdu(m)", sep,
			"sden(m)", sep, "sdnu(m)", sep, "sdue(m)", sep, "age(s)", sep,
			"ratio")
	}
	p += "\r\n"
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* std-dev of soltuion -------------------------------------------------------*/
func (sol *Sol) SolStd() float64 {
	/* approximate as max std-dev of 3-axis std-devs */
	if sol.Qr[0] > sol.Qr[1] && sol.Qr[0] > sol.Qr[2] {
		return float64(SQRT32(sol.Qr[0]))
	}
	if sol.Qr[1] > sol.Qr[2] {
		return float64(SQRT32(sol.Qr[1]))
	}
	return float64(SQRT32(sol.Qr[2]))
}

/* output solution body --------------------------------------------------------
* output solution body to buffer
* args   : uint8_t *buff    IO  output buffer
*          sol_t  *sol      I   solution
*          double *rb       I   base station position {x,y,z} (ecef) (m)
*          solopt_t *opt    I   solution options
* return : number of output bytes
*-----------------------------------------------------------------------------*/
func (sol *Sol) OutSols(buff *string, rb []float64, opt *SolOpt) int {
	var (
		time, ts    Gtime
		gpst        float64
		week, timeu int
		s, p        string
	)
	sep := opt2sep(opt)
	if buff != nil {
		p = *buff
	}

	Trace(4, "outsols :\n")

	/* suppress output if std is over opt.maxsolstd */
	if opt.MaxSolStd > 0.0 && sol.SolStd() > opt.MaxSolStd {
		return 0
	}
	if opt.Posf == SOLF_NMEA {
		if opt.NmeaIntv[0] < 0.0 {
			return 0
		}
		if ScreenTime(sol.Time, ts, ts, opt.NmeaIntv[0]) == 0 {
			return 0
		}
	}
	if sol.Stat <= SOLQ_NONE || (opt.Posf == SOLF_ENU && Norm(rb, 3) <= 0.0) {
		return 0
	}
	if opt.TimeU < 0 {
		timeu = 0
	} else {
		if opt.TimeU > 20 {
			timeu = 20
		} else {
			timeu = opt.TimeU
		}
	}

	time = sol.Time
	if opt.TimeS >= TIMES_UTC {
		time = GpsT2Utc(time)
	}
	if opt.TimeS == TIMES_JST {
		time = TimeAdd(time, 9*3600.0)
	}

	if opt.TimeF > 0 {
		Time2Str(time, &s, timeu)
	} else {
		gpst = Time2GpsT(time, &week)
		if 86400*7-gpst < 0.5/math.Pow(10.0, float64(timeu)) {
			week++
			gpst = 0.0
		}
		var tu int = timeu + 1
		if timeu <= 0 {
			tu = 0
		}
		s = fmt.Sprintf("%4d%.16s%*.*f", week, sep, 6+tu, timeu, gpst)
	}
	switch byte(opt.Posf) {
	case SOLF_LLH:
		sol.OutSolPos(&p, s, opt)

	case SOLF_XYZ:
		OutEcef(&p, s, sol, opt)

	case SOLF_ENU:
		sol.OutSolEnu(&p, s, rb, opt)

	case SOLF_NMEA:
		sol.OutSolNmeaRmc(&p)
		sol.OutSolNmeaGga(&p)

	}
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output solution extended ----------------------------------------------------
* output solution exteneded infomation
* args   : uint8_t *buff    IO  output buffer
*          sol_t  *sol      I   solution
*          ssat_t *ssat     I   satellite status
*          solopt_t *opt    I   solution options
* return : number of output bytes
* notes  : only support nmea
*-----------------------------------------------------------------------------*/
func (sol *Sol) OutSolExs(buff *string, ssat []SSat, opt *SolOpt) int {
	var ts Gtime
	p := *buff

	Trace(4, "outsolexs:\n")

	/* suppress output if std is over opt.maxsolstd */
	if opt.MaxSolStd > 0.0 && sol.SolStd() > opt.MaxSolStd {
		return 0
	}
	if opt.Posf == SOLF_NMEA {
		if opt.NmeaIntv[1] < 0.0 {
			return 0
		}
		if ScreenTime(sol.Time, ts, ts, opt.NmeaIntv[1]) == 0 {
			return 0
		}
	}
	if opt.Posf == SOLF_NMEA {
		sol.OutSolNmeaGsa(&p, ssat)
		sol.OutSolNmeaGsv(&p, ssat)
	}
	n := len(p) - len(*buff)
	*buff = p
	return n
}

/* output processing option ----------------------------------------------------
* output processing option to file
* args   : FILE   *fp       I   output file pointer
*          prcopt_t *opt    I   processing options
* return : none
*-----------------------------------------------------------------------------*/
func OutPrcOpt(fp *os.File, opt *PrcOpt) {
	var buff string

	Trace(4, "outprcopt:\n")

	if n := OutPrcOpts(&buff, opt); n > 0 {
		fp.WriteString(buff)
	}
}

/* output solution header ------------------------------------------------------
* output solution heade to file
* args   : FILE   *fp       I   output file pointer
*          solopt_t *opt    I   solution options
* return : none
*-----------------------------------------------------------------------------*/
func OutSolHead(fp *os.File, opt *SolOpt) {
	var buff string

	Trace(4, "outsolhead:\n")

	if n := OutSolHeader(&buff, opt); n > 0 {
		fp.WriteString(buff)
	}
}

/* output solution body --------------------------------------------------------
* output solution body to file
* args   : FILE   *fp       I   output file pointer
*          sol_t  *sol      I   solution
*          double *rb       I   base station position {x,y,z} (ecef) (m)
*          solopt_t *opt    I   solution options
* return : none
*-----------------------------------------------------------------------------*/
func (sol *Sol) OutSol(fp *os.File, rb []float64, opt *SolOpt) {
	var buff string

	Trace(4, "outsol  :\n")

	if n := sol.OutSols(&buff, rb, opt); n > 0 {
		fp.WriteString(buff)
	}
}

/* output solution extended ----------------------------------------------------
* output solution exteneded infomation to file
* args   : FILE   *fp       I   output file pointer
*          sol_t  *sol      I   solution
*          ssat_t *ssat     I   satellite status
*          solopt_t *opt    I   solution options
* return : none
* notes  : only support nmea
*-----------------------------------------------------------------------------*/
func (sol *Sol) OutSolex(fp *os.File, ssat []SSat, opt *SolOpt) {
	var buff string

	Trace(4, "outsolex:\n")

	if n := sol.OutSolExs(&buff, ssat, opt); n > 0 {
		fp.WriteString(buff)
	}
}
