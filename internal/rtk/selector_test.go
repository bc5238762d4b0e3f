package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParamCountsDynamicsExpandsPosition(t *testing.T) {
	assert := assert.New(t)
	opt := &PrcOpt{}
	assert.Equal(3, RNP(opt))
	opt.Dynamics = 1
	assert.Equal(9, RNP(opt))
}

func Test_ParamCountsIonoEstimateAddsPerSatState(t *testing.T) {
	assert := assert.New(t)
	opt := &PrcOpt{IonoOpt: IONOOPT_OFF}
	assert.Equal(0, RNI(opt))
	opt.IonoOpt = IONOOPT_EST
	assert.Equal(MAXSAT, RNI(opt))
}

func Test_ParamCountsBiasZeroBelowDGPS(t *testing.T) {
	assert := assert.New(t)
	opt := &PrcOpt{Mode: PMODE_SINGLE, Nf: 2}
	assert.Equal(0, RNB(opt))
	opt.Mode = PMODE_KINEMA
	assert.Equal(MAXSAT*RNF(opt), RNB(opt))
}

func Test_TotalStateCountIsSumOfParts(t *testing.T) {
	assert := assert.New(t)
	opt := &PrcOpt{Mode: PMODE_KINEMA, Nf: 2, IonoOpt: IONOOPT_EST, TropOpt: TROPOPT_EST}
	assert.Equal(RNP(opt)+RNI(opt)+RNT(opt)+RNL(opt), RNR(opt))
	assert.Equal(RNR(opt)+RNB(opt), RNX(opt))
}

/* SelSat only admits satellites present and sorted identically in both the
   rover and reference blocks, and only above the elevation mask at the base. */
func Test_SelSatMatchesCommonSatellitesAboveMask(t *testing.T) {
	assert := assert.New(t)
	opt := &PrcOpt{Elmin: 10 * D2R}

	// rover block: sat 3,5,8 ; reference block: sat 3,5,8 (identical, sorted)
	obs := []ObsD{
		{Sat: 3, Rcv: 1}, {Sat: 5, Rcv: 1}, {Sat: 8, Rcv: 1},
		{Sat: 3, Rcv: 2}, {Sat: 5, Rcv: 2}, {Sat: 8, Rcv: 2},
	}
	// azel indexed by the reference-block position j; sat 5 sits below mask
	azel := make([]float64, 2*6)
	azel[1+3*2] = 20 * D2R // sat3 (j=3) elevation
	azel[1+4*2] = 2 * D2R  // sat5 (j=4) below mask
	azel[1+5*2] = 30 * D2R // sat8 (j=5)

	sat := make([]int, 3)
	iu := make([]int, 3)
	ir := make([]int, 3)
	n := SelSat(obs, azel, 3, 3, opt, sat, iu, ir)

	assert.Equal(2, n)
	assert.ElementsMatch([]int{3, 8}, sat[:n])
}
