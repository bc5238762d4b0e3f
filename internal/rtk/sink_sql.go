/*------------------------------------------------------------------------------
* sink_sql.go : relational archival sink for post-processed solutions
*
*          Copyright (C) 2007-2020 by T.TAKASU, All rights reserved.
*-----------------------------------------------------------------------------*/

package rtk

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// SQLSink archives one row per epoch to any database/sql driver sqlx can
// drive -- the same archival shape a streaming receiver daemon would wire
// against a live feed, adapted here to serve a post-processing run instead
// of a live stream. Only sqlx is wired concretely — see DESIGN.md for why
// the other candidate drivers are named but not instantiated.
type SQLSink struct {
	db    *sqlx.DB
	table string
}

// NewSQLSink wraps an already-open *sql.DB (opened by the caller against
// whichever driver is registered — sqlite, postgres, mysql, clickhouse...)
// and ensures the archival table exists.
func NewSQLSink(db *sql.DB, driverName, table string) (*SQLSink, error) {
	x := sqlx.NewDb(db, driverName)
	schema := `CREATE TABLE IF NOT EXISTS ` + table + ` (
		epoch_time DOUBLE PRECISION,
		x DOUBLE PRECISION, y DOUBLE PRECISION, z DOUBLE PRECISION,
		qxx DOUBLE PRECISION, qyy DOUBLE PRECISION, qzz DOUBLE PRECISION,
		stat SMALLINT, ns SMALLINT, age REAL, ratio REAL
	)`
	if _, err := x.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLSink{db: x, table: table}, nil
}

func (s *SQLSink) WriteSolution(sol Sol) error {
	_, err := s.db.Exec(
		`INSERT INTO `+s.table+
			` (epoch_time, x, y, z, qxx, qyy, qzz, stat, ns, age, ratio)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		float64(sol.Time.Time)+sol.Time.Sec, sol.Rr[0], sol.Rr[1], sol.Rr[2],
		sol.Qr[0], sol.Qr[1], sol.Qr[2], sol.Stat, sol.Ns, sol.Age, sol.Ratio)
	return err
}

func (s *SQLSink) Close() error {
	return s.db.Close()
}
