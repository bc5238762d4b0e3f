package rtk

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

/* exercises SQLSink end-to-end against an in-memory sqlite database: table
   creation, a solution insert, and a readback of the archived row. */
func Test_SQLSinkWritesSolutionToSqlite(t *testing.T) {
	assert := assert.New(t)

	db, err := sql.Open("sqlite3", ":memory:")
	assert.NoError(err)
	defer db.Close()

	sink, err := NewSQLSink(db, "sqlite3", "solutions")
	assert.NoError(err)
	defer sink.Close()

	sol := Sol{
		Time:  Gtime{Time: 1234567, Sec: 0.5},
		Rr:    [6]float64{100.0, 200.0, 300.0},
		Stat:  SOLQ_FIX,
		Ns:    8,
		Age:   1.0,
		Ratio: 3.5,
	}
	assert.NoError(sink.WriteSolution(sol))

	var n int
	assert.NoError(db.QueryRow(`SELECT COUNT(*) FROM solutions`).Scan(&n))
	assert.Equal(1, n)

	var x, y, z float64
	var stat int
	assert.NoError(db.QueryRow(`SELECT x, y, z, stat FROM solutions`).Scan(&x, &y, &z, &stat))
	assert.Equal(100.0, x)
	assert.Equal(200.0, y)
	assert.Equal(300.0, z)
	assert.Equal(int(SOLQ_FIX), stat)
}
