package client

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedScan struct {
	Token string `json:"token"`
}

func TestStateDir_SaveLoadRemove(t *testing.T) {
	st, err := NewStateDir(t.TempDir())
	require.NoError(t, err)

	var got savedScan
	require.ErrorIs(t, st.Load("scan-bistro-x", &got), ErrNoState)

	require.NoError(t, st.Save("scan-bistro-x", savedScan{Token: "abc"}))
	require.NoError(t, st.Load("scan-bistro-x", &got))
	assert.Equal(t, "abc", got.Token)

	require.NoError(t, st.Remove("scan-bistro-x"))
	require.NoError(t, st.Remove("scan-bistro-x"))
	assert.ErrorIs(t, st.Load("scan-bistro-x", &got), ErrNoState)
}

func TestStateDir_SimilarTenantsDoNotShareState(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStateDir(dir)
	require.NoError(t, err)

	require.NoError(t, st.Save("waiter-a.b", savedScan{Token: "one"}))
	require.NoError(t, st.Save("waiter-a_b", savedScan{Token: "two"}))
	require.NoError(t, st.Save("waiter-../../x", savedScan{Token: "three"}))

	var got savedScan
	require.NoError(t, st.Load("waiter-a.b", &got))
	assert.Equal(t, "one", got.Token)
	require.NoError(t, st.Load("waiter-a_b", &got))
	assert.Equal(t, "two", got.Token)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
