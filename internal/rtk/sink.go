/*------------------------------------------------------------------------------
* sink.go : pluggable solution archival for the post-processing driver
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import "os"

// SolutionSink is the post-processing driver's output boundary: one
// solution in, written wherever the caller wants it archived. FileSink
// covers flat-file formatting; SQLSink (sink_sql.go) covers the
// database-archival shape a live receiver daemon would use, adapted here
// to a post-processing run.
type SolutionSink interface {
	WriteSolution(Sol) error
	Close() error
}

// FileSink writes one formatted solution line per epoch using
// Sol.OutSol's formatting logic (solution.go).
type FileSink struct {
	fp   *os.File
	opt  *SolOpt
	rb   [3]float64
	open bool
}

func NewFileSink(path string, opt *SolOpt) (*FileSink, error) {
	fp, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if opt.OutHead != 0 {
		OutSolHead(fp, opt)
	}
	return &FileSink{fp: fp, opt: opt, open: true}, nil
}

func (s *FileSink) WriteSolution(sol Sol) error {
	sol.OutSol(s.fp, s.rb[:], s.opt)
	return nil
}

func (s *FileSink) Close() error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.fp.Close()
}
