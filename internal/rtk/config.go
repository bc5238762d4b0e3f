/*------------------------------------------------------------------------------
* config.go : yaml configuration loading for the positioning engine
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RunConfig is the yaml-facing surface of PrcOpt/SolOpt: the fields an
// operator actually tunes between runs, validated before they are spread
// onto the defaults a legacy ini-file loader would have built. Fields left
// zero keep the DefaultProcOpt/DefaultSolOpt value, except dynamics, filter,
// time_format and trace_level, which are always applied (zero included).
type RunConfig struct {
	Mode       int     `yaml:"mode" validate:"gte=0,lte=6"`
	Nf         int     `yaml:"frequencies" validate:"omitempty,gte=1,lte=3"`
	NavSys     int     `yaml:"nav_systems"`
	ElevMaskDg float64 `yaml:"elevation_mask_deg" validate:"gte=0,lt=90"`
	ModeAr     int     `yaml:"ar_mode" validate:"gte=0,lte=4"`
	MinFix     int     `yaml:"min_fix_count" validate:"omitempty,gte=1"`
	MinLock    int     `yaml:"min_lock_count" validate:"gte=0"`
	MaxOut     int     `yaml:"max_outage" validate:"gte=0"`
	Dynamics   int     `yaml:"dynamics" validate:"gte=0,lte=2"`
	FilterType int     `yaml:"filter" validate:"gte=0,lte=2"`
	MaxGdop    float64 `yaml:"max_gdop" validate:"gte=0"`
	MaxInno    float64 `yaml:"max_innovation_m" validate:"gte=0"`
	ThresSlip  float64 `yaml:"slip_threshold_m" validate:"gte=0"`
	Baseline   float64 `yaml:"baseline_len_m" validate:"gte=0"`
	BaselineSd float64 `yaml:"baseline_sigma_m" validate:"gte=0"`

	SolFormat int    `yaml:"sol_format" validate:"gte=0,lte=4"`
	TimeFmt   int    `yaml:"time_format" validate:"gte=0,lte=1"`
	TraceLvl  int    `yaml:"trace_level" validate:"gte=0,lte=5"`
	LogFile   string `yaml:"log_file"`
}

var cfgValidate = validator.New()

// LoadConfig reads a yaml run configuration, validates it against the
// struct tags above, and overlays it onto DefaultProcOpt/DefaultSolOpt,
// with schema validation up front instead of silently accepting an
// out-of-range field.
func LoadConfig(path string) (*PrcOpt, *SolOpt, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var rc RunConfig
	if err := yaml.Unmarshal(buf, &rc); err != nil {
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfgValidate.Struct(&rc); err != nil {
		return nil, nil, fmt.Errorf("config: %s: %w", path, err)
	}

	popt := DefaultProcOpt()
	sopt := DefaultSolOpt()
	applyRunConfig(&rc, &popt, &sopt)

	SetTraceLevel(sopt.Trace)
	if rc.LogFile != "" {
		f, err := os.OpenFile(rc.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("config: open log file %s: %w", rc.LogFile, err)
		}
		l := logrus.New()
		l.SetOutput(f)
		l.SetLevel(Log.GetLevel())
		SetLogger(l)
	}
	return &popt, &sopt, nil
}

func applyRunConfig(rc *RunConfig, popt *PrcOpt, sopt *SolOpt) {
	if rc.Mode != 0 {
		popt.Mode = rc.Mode
	}
	if rc.Nf != 0 {
		popt.Nf = rc.Nf
	}
	if rc.NavSys != 0 {
		popt.NavSys = rc.NavSys
	}
	if rc.ElevMaskDg != 0 {
		popt.Elmin = rc.ElevMaskDg * D2R
	}
	if rc.ModeAr != 0 {
		popt.ModeAr = rc.ModeAr
	}
	if rc.MinFix != 0 {
		popt.MinFix = rc.MinFix
	}
	if rc.MinLock != 0 {
		popt.MinLock = rc.MinLock
	}
	if rc.MaxOut != 0 {
		popt.MaxOut = rc.MaxOut
	}
	popt.Dynamics = rc.Dynamics
	popt.FilterType = rc.FilterType
	if rc.MaxGdop != 0 {
		popt.MaxGdop = rc.MaxGdop
	}
	if rc.MaxInno != 0 {
		popt.MaxInno = rc.MaxInno
	}
	if rc.ThresSlip != 0 {
		popt.ThresSlip = rc.ThresSlip
	}
	if rc.Baseline != 0 {
		popt.Baseline[0] = rc.Baseline
		popt.Baseline[1] = rc.BaselineSd
	}

	if rc.SolFormat != 0 {
		sopt.Posf = rc.SolFormat
	}
	sopt.TimeF = rc.TimeFmt
	sopt.Trace = rc.TraceLvl
}
