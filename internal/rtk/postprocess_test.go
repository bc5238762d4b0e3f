package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type memSink struct {
	sols   []Sol
	closed bool
}

func (s *memSink) WriteSolution(sol Sol) error {
	s.sols = append(s.sols, sol)
	return nil
}
func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func mkSol(t uint64, stat uint8) Sol {
	return Sol{Time: Gtime{Time: t}, Stat: stat, Rr: [6]float64{1, 2, 3, 0, 0, 0}}
}

/* combineSolutions resolves the forward/backward tie-break open question:
   whichever pass holds a fix wins outright, unmodified, when status differs. */
func Test_CombineSolutionsFixedPassWinsOutright(t *testing.T) {
	assert := assert.New(t)

	fwd := []Sol{mkSol(100, SOLQ_FLOAT)}
	bwd := []Sol{mkSol(100, SOLQ_FIX)}

	out := combineSolutions(PrcOpt{}, fwd, bwd)
	assert.Len(out, 1)
	assert.Equal(uint8(SOLQ_FIX), out[0].Stat)
	assert.Equal(bwd[0].Rr, out[0].Rr)
}

/* matching epochs at equal status fuse via the smoother rather than picking
   one pass outright. */
func Test_CombineSolutionsFusesEqualStatusEpochs(t *testing.T) {
	assert := assert.New(t)

	fwd := []Sol{mkSol(200, SOLQ_FLOAT)}
	bwd := []Sol{mkSol(200, SOLQ_FLOAT)}
	fwd[0].Qr = [6]float32{1, 1, 1, 0, 0, 0}
	bwd[0].Qr = [6]float32{1, 1, 1, 0, 0, 0}
	bwd[0].Rr = [6]float64{3, 4, 5, 0, 0, 0}

	out := combineSolutions(PrcOpt{}, fwd, bwd)
	assert.Len(out, 1)
	// fused position should land strictly between the two passes
	assert.True(out[0].Rr[0] > fwd[0].Rr[0] && out[0].Rr[0] < bwd[0].Rr[0])
}

func Test_CombineSolutionsKeepsUnmatchedEpochs(t *testing.T) {
	assert := assert.New(t)

	fwd := []Sol{mkSol(100, SOLQ_FIX), mkSol(200, SOLQ_FIX)}
	bwd := []Sol{mkSol(100, SOLQ_FIX)}

	out := combineSolutions(PrcOpt{}, fwd, bwd)
	assert.Len(out, 2)
}

func Test_EmitAllWritesEveryEpochToSink(t *testing.T) {
	assert := assert.New(t)
	sols := []Sol{mkSol(1, SOLQ_FIX), mkSol(2, SOLQ_FIX), mkSol(3, SOLQ_FLOAT)}
	sink := &memSink{}

	n, err := emitAll(sols, sink)
	assert.NoError(err)
	assert.Equal(3, n)
	assert.Len(sink.sols, 3)
}

func Test_ReverseObsAndSols(t *testing.T) {
	assert := assert.New(t)
	obs := []ObsD{{Sat: 1}, {Sat: 2}, {Sat: 3}}
	reverseObs(obs)
	assert.Equal([]int{3, 2, 1}, []int{obs[0].Sat, obs[1].Sat, obs[2].Sat})

	sols := []Sol{mkSol(1, 0), mkSol(2, 0), mkSol(3, 0)}
	reverseSols(sols)
	assert.Equal([]uint64{3, 2, 1}, []uint64{sols[0].Time.Time, sols[1].Time.Time, sols[2].Time.Time})
}
