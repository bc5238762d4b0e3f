/*------------------------------------------------------------------------------
* source.go : epoch record source for the command-line driver
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"rtkgo/internal/rtk"
)

// epochRecord is one decoded epoch's worth of input: the engine's own
// ObsD/Nav types, serialized as JSON. RINEX/SP3/CLK/ANTEX decoding is out
// of scope for this engine -- an upstream decoder is expected to have
// already turned raw receiver files into these records; this source only
// plays them back in order.
type epochRecord struct {
	Obs []rtk.ObsD `json:"obs"`
	Nav *rtk.Nav   `json:"nav"`
}

// jsonEpochSource implements rtk.EpochSource over a file holding a JSON
// array of epochRecord, one element per nominal epoch.
type jsonEpochSource struct {
	path    string
	records []epochRecord
	pos     int
}

func newJSONEpochSource(path string) (*jsonEpochSource, error) {
	s := &jsonEpochSource{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *jsonEpochSource) load() error {
	buf, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("source: read %s: %w", s.path, err)
	}
	var records []epochRecord
	if err := json.Unmarshal(buf, &records); err != nil {
		return fmt.Errorf("source: decode %s: %w", s.path, err)
	}
	s.records = records
	s.pos = 0
	return nil
}

func (s *jsonEpochSource) Next() ([]rtk.ObsD, *rtk.Nav, bool) {
	if s.pos >= len(s.records) {
		return nil, nil, false
	}
	r := s.records[s.pos]
	s.pos++
	return r.Obs, r.Nav, true
}

func (s *jsonEpochSource) Reset() {
	s.pos = 0
}
