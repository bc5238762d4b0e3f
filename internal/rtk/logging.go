/*------------------------------------------------------------------------------
* logging.go : structured logging for the positioning engine
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"github.com/sirupsen/logrus"
)

// Log is the engine's package-level logger, the one piece of global state
// the design tolerates (logging configuration) -- everything else that used
// to hang off fp_trace/level_trace globals now lives on Engine. Swap it
// with SetLogger to redirect output or attach hooks; it defaults to
// logrus's standard logger writing to stderr.
var Log = logrus.StandardLogger()

// SetLogger replaces the package logger, e.g. to point at a file or to
// attach a JSON formatter for log aggregation.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		Log = l
	}
}

// SetTraceLevel maps the legacy numeric trace levels (1-5, higher is more
// verbose) onto logrus levels: 1-2 are operational detail (Debug), 3-4 are
// per-epoch/per-satellite detail (Trace), 5 is unused by this engine since
// nothing traces at that resolution.
func SetTraceLevel(level int) {
	switch {
	case level <= 0:
		Log.SetLevel(logrus.InfoLevel)
	case level <= 2:
		Log.SetLevel(logrus.DebugLevel)
	default:
		Log.SetLevel(logrus.TraceLevel)
	}
}

// epochFields builds the {epoch[, sat]} field set every engine log line
// carries, replacing Tracet's elapsed-tick prefix.
func epochFields(time Gtime) logrus.Fields {
	var str string
	Time2Str(time, &str, 3)
	return logrus.Fields{"epoch": str}
}

// logEpoch emits an engine-level diagnostic tagged with the epoch time,
// replacing a Tracet(level, ...) call against a specific processing time.
func logEpoch(level logrus.Level, time Gtime, msg string) {
	Log.WithFields(epochFields(time)).Log(level, msg)
}

// logSat emits a per-satellite diagnostic, replacing Trace/Tracet calls
// that used to interpolate a satellite id into the format string.
func logSat(level logrus.Level, time Gtime, sat int, msg string) {
	f := epochFields(time)
	var id string
	SatNo2Id(sat, &id)
	f["sat"] = id
	Log.WithFields(f).Log(level, msg)
}
