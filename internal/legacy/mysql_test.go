package legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMySQLConfigForcesTimeParsing(t *testing.T) {
	cfg, err := mysqlConfig("app:secret@tcp(db:3306)/productmanage?charset=latin1")
	require.NoError(t, err)
	require.True(t, cfg.ParseTime)
	require.Equal(t, time.UTC, cfg.Loc)
	require.Equal(t, "productmanage", cfg.DBName)
	require.Equal(t, "db:3306", cfg.Addr)
	require.Equal(t, "utf8mb4", cfg.Params["charset"])
}

func TestMySQLConfigRejectsEmptyDSN(t *testing.T) {
	_, err := mysqlConfig("  ")
	require.Error(t, err)
}
