package notice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoard(t *testing.T) {
	b := &Board{}
	b.Notify(SessionExpired())
	b.Notify(LoadFailed("boom"))

	require.Equal(t, 1, b.Count(CodeSessionExpired))
	require.Len(t, b.All(), 2)
	require.True(t, b.All()[1].IsError())

	drained := b.Drain()
	require.Len(t, drained, 2)
	require.Empty(t, b.All())
	require.Empty(t, b.Drain())
}
