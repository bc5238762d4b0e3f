package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/* RelativePos' gdop gate rejects when DOPs reports dop[0]<=0 (too few
   usable satellites) or dop[0] exceeds MaxGdop; these two tests exercise
   DOPs under the same geometries the gate reacts to, mirroring
   orchestrator.go's inline check. */
func Test_DOPsRejectsBelowFourSatellites(t *testing.T) {
	assert := assert.New(t)
	azel := []float64{
		0, 80 * D2R,
		1.5, 70 * D2R,
		3.0, 60 * D2R,
	}
	var dop [4]float64
	DOPs(3, azel, 10*D2R, dop[:])
	assert.Equal(0.0, dop[0], "fewer than 4 usable satellites must leave gdop at 0, which the gate treats as a reject")
}

func Test_DOPsWellConditionedGeometryStaysUnderTypicalMax(t *testing.T) {
	assert := assert.New(t)
	azel := []float64{
		0.0, 80 * D2R,
		1.57, 70 * D2R,
		3.14, 60 * D2R,
		4.71, 65 * D2R,
		2.0, 40 * D2R,
	}
	var dop [4]float64
	DOPs(5, azel, 10*D2R, dop[:])
	assert.True(dop[0] > 0.0)
	assert.True(dop[0] < 30.0, "a well-spread 5-satellite sky should pass a typical MaxGdop=30 gate")
}

/* Step must refuse ppp modes outright rather than silently falling through
   to a ppp solver this engine does not carry (ppp is a non-goal). */
func Test_StepRejectsPPPModeBeforeProcessing(t *testing.T) {
	assert := assert.New(t)

	e := &Engine{}
	opt := DefaultProcOpt()
	opt.Mode = PMODE_PPP_KINEMA
	opt.Dynamics = 1 // keep Step past the point-pos failure so the ppp check is actually reached
	e.Init(&opt)

	obs := []ObsD{{Sat: 1, Rcv: 1, Time: Gtime{Time: 1000}}}

	ret := e.Step(obs, len(obs), &Nav{})

	assert.Equal(0, ret)
	assert.Equal(uint8(SOLQ_NONE), e.Sol.Stat)
}
