/*------------------------------------------------------------------------------
* rtkpos.c : precise positioning (split by component)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

/* global variables ----------------------------------------------------------*/
var (
	statlevel int      = 0   /* rtk status output level (0:off) */
	fp_stat   *os.File = nil /* rtk status file pointer */
	file_stat string   = ""  /* rtk status file original path */
	time_stat Gtime            /* rtk status file time */
)

/* open solution status file ---------------------------------------------------
* open solution status file and set output level
* args   : char     *file   I   rtk status file
*          int      level   I   rtk status level (0: off)
* return : status (1:ok,0:error)
* notes  : file can constain time keywords (%Y,%y,%m...) defined in reppath().
*          The time to replace keywords is based on UTC of CPU time.
* output : solution status file record format
*
*   $POS,week,tow,stat,posx,posy,posz,posxf,posyf,poszf
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          posx/posy/posz    : position x/y/z ecef (m) float
*          posxf/posyf/poszf : position x/y/z ecef (m) fixed
*
*   $VELACC,week,tow,stat,vele,veln,velu,acce,accn,accu,velef,velnf,veluf,accef,accnf,accuf
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          vele/veln/velu    : velocity e/n/u (m/s) float
*          acce/accn/accu    : acceleration e/n/u (m/s^2) float
*          velef/velnf/veluf : velocity e/n/u (m/s) fixed
*          accef/accnf/accuf : acceleration e/n/u (m/s^2) fixed
*
*   $CLK,week,tow,stat,rcv,clk1,clk2,clk3,clk4
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          rcv      : receiver (1:rover)
*          clk1     : receiver clock bias GPS (ns)
*          clk2     : receiver clock bias GLO-GPS (ns)
*          clk3     : receiver clock bias GAL-GPS (ns)
*          clk4     : receiver clock bias BDS-GPS (ns)
*
*   $ION,week,tow,stat,sat,az,el,ion,ion-fixed
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          sat      : satellite id
*          az/el    : azimuth/elevation angle(deg)
*          ion      : vertical ionospheric delay L1 (m) float
*          ion-fixed: vertical ionospheric delay L1 (m) fixed
*
*   $TROP,week,tow,stat,rcv,ztd,ztdf
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          rcv      : receiver (1:rover,2:base station)
*          ztd      : zenith total delay (m) float
*          ztdf     : zenith total delay (m) fixed
*
*   $HWBIAS,week,tow,stat,frq,bias,biasf
*          week/tow : gps week no/time of week (s)
*          stat     : solution status
*          frq      : frequency (1:L1,2:L2,...)
*          bias     : h/w bias coefficient (m/MHz) float
*          biasf    : h/w bias coefficient (m/MHz) fixed
*
*   $SAT,week,tow,sat,frq,az,el,resp,resc,vsat,snr,fix,slip,lock,outc,slipc,rejc
*          week/tow : gps week no/time of week (s)
*          sat/frq  : satellite id/frequency (1:L1,2:L2,...)
*          az/el    : azimuth/elevation angle (deg)
*          resp     : pseudorange residual (m)
*          resc     : carrier-phase residual (m)
*          vsat     : valid data flag (0:invalid,1:valid)
*          snr      : signal strength (dbHz)
*          fix      : ambiguity flag  (0:no data,1:float,2:fixed,3:hold,4:ppp)
*          slip     : cycle-slip flag (bit1:slip,bit2:parity unknown)
*          lock     : carrier-lock count
*          outc     : data outage count
*          slipc    : cycle-slip count
*          rejc     : data reject (outlier) count
*
*-----------------------------------------------------------------------------*/
func RtkOpenStat(file string, level int) int {
	var (
		path string
		err  error
	)
	time := Utc2GpsT(TimeGet())

	Trace(4, "rtkopenstat: file=%s level=%d\n", file, level)

	if level <= 0 {
		return 0
	}

	RepPath(file, &path, time, "", "")

	fp_stat, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.ModeAppend|os.ModePerm)
	if fp_stat == nil || err != nil {
		Trace(2, "rtkopenstat: file open error path=%s\n", path)
		return 0
	}
	file_stat = file
	time_stat = time
	statlevel = level
	return 1
}


/* close solution status file --------------------------------------------------
* close solution status file
* args   : none
* return : none
*-----------------------------------------------------------------------------*/
func RtkCloseStat() {
	Trace(4, "rtkclosestat:\n")

	if fp_stat != nil {
		fp_stat.Close()
	}
	fp_stat = nil
	file_stat = ""
	statlevel = 0
}


/* write solution status to buffer -------------------------------------------*/
func (rtk *Engine) RtkOutStat(buff *string) int {
	var (
		ssat                          *SSat
		tow                           float64
		pos, vel, acc, vela, acca, xa [3]float64
		i, j, week, nfreq, nf         int
		id                            string
	)
	nf = RNF(&rtk.Opt)
	bufflen := len(*buff)
	if rtk.Sol.Stat <= SOLQ_NONE {
		return 0
	}
	/* write ppp solution status to buffer */
	if rtk.Opt.Mode >= PMODE_PPP_KINEMA {
		return OutPPPStat(rtk, buff)
	}
	est := rtk.Opt.Mode >= PMODE_DGPS
	nfreq = 1
	if est {
		nfreq = nf
	}
	tow = Time2GpsT(rtk.Sol.Time, &week)

	/* receiver position */
	if est {
		for i = 0; i < 3; i++ {
			xa[i] = 0.0
			if i < rtk.Na {
				xa[i] = rtk.Xa[i]
			}
		}
		*buff += fmt.Sprintf("$POS,%d,%.3f,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n", week, tow,
			rtk.Sol.Stat, rtk.X[0], rtk.X[1], rtk.X[2], xa[0], xa[1],
			xa[2])
	} else {
		*buff += fmt.Sprintf("$POS,%d,%.3f,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f\n", week, tow,
			rtk.Sol.Stat, rtk.Sol.Rr[0], rtk.Sol.Rr[1], rtk.Sol.Rr[2],
			0.0, 0.0, 0.0)
	}
	/* receiver velocity and acceleration */
	if est && rtk.Opt.Dynamics > 0 {
		Ecef2Pos(rtk.Sol.Rr[:], pos[:])
		Ecef2Enu(pos[:], rtk.X[3:], vel[:])
		Ecef2Enu(pos[:], rtk.X[6:], acc[:])
		if rtk.Na >= 6 {
			Ecef2Enu(pos[:], rtk.X[3:], vel[:])
		}
		if rtk.Na >= 9 {
			Ecef2Enu(pos[:], rtk.X[6:], acc[:])
		}
		*buff += fmt.Sprintf("$VELACC,%d,%.3f,%d,%.4f,%.4f,%.4f,%.5f,%.5f,%.5f,%.4f,%.4f,%.4f,%.5f,%.5f,%.5f\n",
			week, tow, rtk.Sol.Stat, vel[0], vel[1], vel[2], acc[0], acc[1],
			acc[2], vela[0], vela[1], vela[2], acca[0], acca[1], acca[2])
	} else {
		Ecef2Pos(rtk.Sol.Rr[:], pos[:])
		Ecef2Enu(pos[:], rtk.Sol.Rr[3:], vel[:])
		*buff += fmt.Sprintf("$VELACC,%d,%.3f,%d,%.4f,%.4f,%.4f,%.5f,%.5f,%.5f,%.4f,%.4f,%.4f,%.5f,%.5f,%.5f\n",
			week, tow, rtk.Sol.Stat, vel[0], vel[1], vel[2],
			0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0)
	}
	/* receiver clocks */
	*buff += fmt.Sprintf("$CLK,%d,%.3f,%d,%d,%.3f,%.3f,%.3f,%.3f\n",
		week, tow, rtk.Sol.Stat, 1, rtk.Sol.Dtr[0]*1e9, rtk.Sol.Dtr[1]*1e9,
		rtk.Sol.Dtr[2]*1e9, rtk.Sol.Dtr[3]*1e9)

	/* ionospheric parameters */
	if est && rtk.Opt.IonoOpt == IONOOPT_EST {
		for i = 0; i < MAXSAT; i++ {
			ssat = &rtk.Ssat[i]
			if ssat.Vs == 0 {
				continue
			}
			SatNo2Id(i+1, &id)
			j = RII(i+1, &rtk.Opt)
			xa[0] = 0.0
			if j < rtk.Na {
				xa[0] = rtk.Xa[j]
			}
			*buff += fmt.Sprintf("$ION,%d,%.3f,%d,%s,%.1f,%.1f,%.4f,%.4f\n", week, tow,
				rtk.Sol.Stat, id, ssat.Azel[0]*R2D, ssat.Azel[1]*R2D,
				rtk.X[j], xa[0])
		}
	}
	/* tropospheric parameters */
	if est && (rtk.Opt.TropOpt == TROPOPT_EST || rtk.Opt.TropOpt == TROPOPT_ESTG) {
		for i = 0; i < 2; i++ {
			j = RIT(i, &rtk.Opt)
			xa[0] = 0.0
			if j < rtk.Na {
				xa[0] = rtk.Xa[j]
			}
			*buff += fmt.Sprintf("$TROP,%d,%.3f,%d,%d,%.4f,%.4f\n", week, tow,
				rtk.Sol.Stat, i+1, rtk.X[j], xa[0])
		}
	}
	/* receiver h/w bias */
	if est && rtk.Opt.GloModeAr == 2 {
		for i = 0; i < nfreq; i++ {
			j = RIL(i, &rtk.Opt)
			xa[0] = 0.0
			if j < rtk.Na {
				xa[0] = rtk.Xa[j]
			}
			*buff += fmt.Sprintf("$HWBIAS,%d,%.3f,%d,%d,%.4f,%.4f\n", week, tow,
				rtk.Sol.Stat, i+1, rtk.X[j], xa[0])
		}
	}
	return len(*buff) - bufflen
}


/* swap solution status file -------------------------------------------------*/
func swapsolstat() {
	var (
		path string
		err  error
	)
	time := Utc2GpsT(TimeGet())

	if Time2GpsT(time, nil)/float64(INT_SWAP_STAT) ==
		Time2GpsT(time_stat, nil)/float64(INT_SWAP_STAT) {
		return
	}
	time_stat = time

	if RepPath(file_stat, &path, time, "", "") == 0 {
		return
	}
	if fp_stat != nil {
		fp_stat.Close()
	}

	fp_stat, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.ModeAppend|os.ModePerm)
	if fp_stat == nil || err != nil {
		Trace(2, "swapsolstat: file open error path=%s\n", path)
		return
	}
	Trace(5, "swapsolstat: path=%s\n", path)
}


/* output solution status ----------------------------------------------------*/
func (rtk *Engine) OutSolStat() {
	var (
		ssat                     *SSat
		tow                      float64
		buff, id                 string
		i, j, n, week, nfreq, nf int
	)
	nf = RNF(&rtk.Opt)

	if statlevel <= 0 || fp_stat == nil || rtk.Sol.Stat == 0 {
		return
	}

	Trace(4, "outsolstat:\n")

	/* swap solution status file */
	swapsolstat()

	/* write solution status */
	n = rtk.RtkOutStat(&buff)
	buff = buff[:n]

	fp_stat.WriteString(buff)

	if rtk.Sol.Stat == SOLQ_NONE || statlevel <= 1 {
		return
	}

	tow = Time2GpsT(rtk.Sol.Time, &week)
	nfreq = 1
	if rtk.Opt.Mode >= PMODE_DGPS {
		nfreq = nf
	}

	/* write residuals and status */
	for i = 0; i < MAXSAT; i++ {
		ssat = &rtk.Ssat[i]
		if ssat.Vs == 0 {
			continue
		}
		SatNo2Id(i+1, &id)
		for j = 0; j < nfreq; j++ {
			fmt.Fprintf(fp_stat, "$SAT,%d,%.3f,%s,%d,%.1f,%.1f,%.4f,%.4f,%d,%.1f,%d,%d,%d,%d,%d,%d\n",
				week, tow, id, j+1, ssat.Azel[0]*R2D, ssat.Azel[1]*R2D,
				ssat.Resp[j], ssat.Resc[j], ssat.Vsat[j],
				float32(ssat.Snr[j])*SNR_UNIT, ssat.Fix[j], ssat.Slip[j]&3,
				ssat.Lock[j], ssat.Outc[j], ssat.Slipc[j], ssat.Rejc[j])
		}
	}
}


/* save error message --------------------------------------------------------*/
func (rtk *Engine) errmsg(format string, v ...interface{}) {
	var buff, tstr string
	Time2Str(rtk.Sol.Time, &tstr, 2)
	buff = fmt.Sprintf("%s: ", tstr[11:])
	buff += fmt.Sprintf(format, v...)

	rtk.ErrBuf += buff
	Trace(5, "%s", buff)
	logEpoch(logrus.WarnLevel, rtk.Sol.Time, buff)
}
