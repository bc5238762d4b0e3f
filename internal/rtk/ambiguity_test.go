package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DDIndexNoActiveAmbiguitiesReturnsZero(t *testing.T) {
	assert := assert.New(t)
	opt := DefaultProcOpt()
	opt.Mode = PMODE_KINEMA
	opt.Nf = 1

	e := &Engine{Opt: opt}
	e.Na = RNR(&opt)
	e.Nx = RNX(&opt)
	e.X = Zeros(e.Nx, 1) // every bias state at zero -> nothing fixable

	ix := make([]int, 2*MAXSAT)
	nb := e.DDIndex(ix)
	assert.Equal(0, nb)
}

func Test_ValidPosFlagsLargeResidualButStillReturnsStat(t *testing.T) {
	assert := assert.New(t)
	e := &Engine{}

	nv := 2
	v := []float64{0.01, 5.0}
	R := Eye(nv)
	vflg := []int{0, 0}

	stat := e.ValidPos(v, R, vflg, nv, 3.0)
	assert.Equal(1, stat)
	assert.Contains(e.ErrBuf, "large residual")
}

func Test_ValidPosQuietWhenWithinThreshold(t *testing.T) {
	assert := assert.New(t)
	e := &Engine{}

	nv := 2
	v := []float64{0.1, 0.2}
	R := Eye(nv)
	vflg := []int{0, 0}

	stat := e.ValidPos(v, R, vflg, nv, 3.0)
	assert.Equal(1, stat)
	assert.Empty(e.ErrBuf)
}
