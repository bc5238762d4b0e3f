package rtk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DetectSlpLLRaisesSlipOnLLIBit(t *testing.T) {
	assert := assert.New(t)

	e := &Engine{}
	e.Opt.Nf = 1
	e.Tt = 1.0 // forward

	sat := 5
	obs := []ObsD{{Sat: sat, Time: Gtime{Time: 1000}}}
	obs[0].L[0] = 123.4
	obs[0].LLI[0] = 1 // cycle-slip bit set

	e.DetectSlp_ll(obs, 0, 1)

	assert.NotEqual(uint8(0), e.Ssat[sat-1].Slip[0]&1)
	assert.Equal(uint8(1), e.Ssat[sat-1].Half[0])
}

func Test_DetectSlpLLSkipsWhenTimeUnchanged(t *testing.T) {
	assert := assert.New(t)

	e := &Engine{}
	e.Opt.Nf = 1
	sat := 7
	now := Gtime{Time: 2000}
	e.Ssat[sat-1].Pt[0][0] = now

	obs := []ObsD{{Sat: sat, Time: now}}
	obs[0].L[0] = 55.0
	obs[0].LLI[0] = 1

	e.DetectSlp_ll(obs, 0, 1)

	// no time elapsed since the recorded previous phase epoch -> skipped
	assert.Equal(uint8(0), e.Ssat[sat-1].Slip[0])
}

func Test_DetectSlpGfKeepsGfWithoutUsableObs(t *testing.T) {
	assert := assert.New(t)

	e := &Engine{}
	e.Opt.Nf = 2
	e.Opt.ThresSlip = 0.05
	sat := 9
	e.Ssat[sat-1].Gf[0] = 1.0 // previous geometry-free value

	// GeometryFreeObs returns 0 without usable L1/L2 data on both obs, so
	// DetectSlp_gf takes its early return: the cached Gf value stays put
	// and the jump-detection branch is not reached.
	obs := []ObsD{{Sat: sat}, {Sat: sat}}
	e.DetectSlp_gf(obs, 0, 1, &Nav{})

	assert.Equal(1.0, e.Ssat[sat-1].Gf[0])
}
