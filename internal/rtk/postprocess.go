/*------------------------------------------------------------------------------
* postprocess.go : post-processing driver (in-memory forward/backward combine)
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

// PostMode selects which passes the Post-Processing Driver runs.
type PostMode int

const (
	PostForward PostMode = iota
	PostBackward
	PostCombined
)

// EpochSource supplies one nominal epoch's observations at a time, in
// ascending time order for PostForward/PostCombined and descending order
// for PostBackward. Next returns ok=false once exhausted.
type EpochSource interface {
	Next() (obs []ObsD, nav *Nav, ok bool)
	Reset()
}

// Run drives the Epoch Orchestrator across src per mode, optionally
// combining a forward and a backward pass the way CombResult used to,
// except entirely in memory: both passes are kept as []Sol rather than
// round-tripped through a temporary solution file, since a
// post-processing run's epoch count is bounded by wall-clock time and
// fits comfortably in memory.
func Run(opt PrcOpt, mode PostMode, src EpochSource, sink SolutionSink) (int, error) {
	switch mode {
	case PostForward:
		sols, err := runPass(opt, src, false)
		if err != nil {
			return 0, err
		}
		return emitAll(sols, sink)
	case PostBackward:
		sols, err := runPass(opt, src, true)
		if err != nil {
			return 0, err
		}
		return emitAll(sols, sink)
	default:
		fwd, err := runPass(opt, src, false)
		if err != nil {
			return 0, err
		}
		src.Reset()
		bwd, err := runPass(opt, src, true)
		if err != nil {
			return 0, err
		}
		combined := combineSolutions(opt, fwd, bwd)
		return emitAll(combined, sink)
	}
}

func runPass(opt PrcOpt, src EpochSource, backward bool) ([]Sol, error) {
	e := &Engine{}
	e.Init(&opt)
	defer e.Free()

	var sols []Sol
	for {
		obs, nav, ok := src.Next()
		if !ok {
			break
		}
		if backward {
			reverseObs(obs)
		}
		e.Step(obs, len(obs), nav)
		sols = append(sols, e.Sol)
	}
	if backward {
		reverseSols(sols)
	}
	return sols, nil
}

func reverseObs(obs []ObsD) {
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}
}

func reverseSols(sols []Sol) {
	for i, j := 0, len(sols)-1; i < j; i, j = i+1, j-1 {
		sols[i], sols[j] = sols[j], sols[i]
	}
}

// combineSolutions fuses a forward and a backward pass epoch-wise, in the
// spirit of CombResult: matching epochs within DTTOL fuse via Smoother
// when both hold equally good status; a mismatch in status lets whichever
// pass reached fix win outright rather than blending.
func combineSolutions(opt PrcOpt, fwd, bwd []Sol) []Sol {
	out := make([]Sol, 0, len(fwd))
	i, j := 0, len(bwd)-1
	for i < len(fwd) && j >= 0 {
		tt := TimeDiff(fwd[i].Time, bwd[j].Time)
		// lower Stat value is the better quality (fix=1 < float=2 ...);
		// SOLQ_NONE (0) ranks below every other status
		fs, bs := int(fwd[i].Stat), int(bwd[j].Stat)
		if fs == SOLQ_NONE {
			fs = 256
		}
		if bs == SOLQ_NONE {
			bs = 256
		}
		switch {
		case tt < -DTTOL:
			out = append(out, fwd[i])
			i++
		case tt > DTTOL:
			out = append(out, bwd[j])
			j--
		case fs < bs:
			out = append(out, fwd[i])
			i++
			j--
		case fs > bs:
			out = append(out, bwd[j])
			i++
			j--
		default:
			out = append(out, fuseEpoch(fwd[i], bwd[j]))
			i++
			j--
		}
	}
	for ; i < len(fwd); i++ {
		out = append(out, fwd[i])
	}
	for ; j >= 0; j-- {
		out = append(out, bwd[j])
	}
	return out
}

func fuseEpoch(f, b Sol) Sol {
	s := f
	tt := TimeDiff(f.Time, b.Time)
	s.Time = TimeAdd(f.Time, -tt/2.0)

	Qf, Qb, Qs := cov3(f.Qr), cov3(b.Qr), make([]float64, 9)
	if Smoother(f.Rr[:3], Qf, b.Rr[:3], Qb, 3, s.Rr[:3], Qs) != 0 {
		return f
	}
	s.Qr = qr3(Qs)
	return s
}

func cov3(qr [6]float32) []float64 {
	Q := make([]float64, 9)
	Q[0], Q[4], Q[8] = float64(qr[0]), float64(qr[1]), float64(qr[2])
	Q[1], Q[3] = float64(qr[3]), float64(qr[3])
	Q[5], Q[7] = float64(qr[4]), float64(qr[4])
	Q[2], Q[6] = float64(qr[5]), float64(qr[5])
	return Q
}

func qr3(Q []float64) [6]float32 {
	var qr [6]float32
	qr[0], qr[1], qr[2] = float32(Q[0]), float32(Q[4]), float32(Q[8])
	qr[3], qr[4], qr[5] = float32(Q[1]), float32(Q[5]), float32(Q[2])
	return qr
}

func emitAll(sols []Sol, sink SolutionSink) (int, error) {
	n := 0
	for _, s := range sols {
		if err := sink.WriteSolution(s); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
