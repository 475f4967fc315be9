package gameweek

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinishedRequiresBothFlags(t *testing.T) {
	t.Parallel()

	require.False(t, Gameweek{ID: 1}.Finished())
	require.False(t, Gameweek{ID: 1, BonusAdded: true}.Finished())
	require.False(t, Gameweek{ID: 1, DataChecked: true}.Finished())
	require.True(t, Gameweek{ID: 1, BonusAdded: true, DataChecked: true}.Finished())
}

func TestValidateRejectsNonPositiveID(t *testing.T) {
	t.Parallel()

	require.Error(t, Gameweek{}.Validate())
	require.NoError(t, Gameweek{ID: 38}.Validate())
}
