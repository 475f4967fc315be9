package app

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDBConnSettingsAddsPreparedBinaryFlag(t *testing.T) {
	t.Parallel()

	dsn, name := dbConnSettings("postgres://u:p@localhost:5432/fpl_live_sync?sslmode=disable", true)
	require.Contains(t, dsn, "disable_prepared_binary_result=yes")
	require.Contains(t, dsn, "sslmode=disable")
	require.Equal(t, "fpl_live_sync", name)
}

func TestDBConnSettingsKeepsExplicitFlag(t *testing.T) {
	t.Parallel()

	in := "postgres://u:p@localhost:5432/fpl_live_sync?disable_prepared_binary_result=no"
	dsn, _ := dbConnSettings(in, true)
	require.Equal(t, in, dsn)
}

func TestDBConnSettingsDisabled(t *testing.T) {
	t.Parallel()

	in := "postgres://u:p@localhost:5432/fpl_live_sync"
	dsn, name := dbConnSettings(in, false)
	require.Equal(t, in, dsn)
	require.Equal(t, "fpl_live_sync", name)
}

func TestDBConnSettingsPassesThroughNonURL(t *testing.T) {
	t.Parallel()

	dsn, name := dbConnSettings("host=localhost dbname=fpl_live_sync", true)
	require.Equal(t, "host=localhost dbname=fpl_live_sync", dsn)
	require.Equal(t, "", name)
}
