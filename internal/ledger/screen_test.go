package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarMember(t *testing.T) {
	t.Parallel()

	members := []Member{
		{ID: "m1", Name: "Lakshmi Devi"},
		{ID: "m2", Name: "Meena Bai"},
		{ID: "m3", Name: "Saritha Akka"},
	}

	m, ok := SimilarMember(members, "Laxmi Devi")
	require.True(t, ok)
	require.Equal(t, "m1", m.ID)

	// Case and surrounding space are ignored.
	m, ok = SimilarMember(members, "  meena bai ")
	require.True(t, ok)
	require.Equal(t, "m2", m.ID)

	_, ok = SimilarMember(members, "Pushpa Thangam")
	require.False(t, ok)

	_, ok = SimilarMember(members, "")
	require.False(t, ok)

	_, ok = SimilarMember(nil, "Meena Bai")
	require.False(t, ok)
}
