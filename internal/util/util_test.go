package util_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/fs"
	"github.com/keshon/avc/internal/util"
)

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	dir := t.TempDir()
	osfs := fs.NewOSFS()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, util.WriteJSON(osfs, path, payload{Name: "x", Count: 3}))

	var got payload
	require.NoError(t, util.ReadJSON(osfs, path, &got))
	require.Equal(t, "x", got.Name)
	require.Equal(t, 3, got.Count)
}

func TestReadJSONMissing(t *testing.T) {
	osfs := fs.NewOSFS()
	var v struct{}
	err := util.ReadJSON(osfs, filepath.Join(t.TempDir(), "nope.json"), &v)
	require.Error(t, err)
	require.True(t, osfs.IsNotExist(err))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	require.Equal(t, []string{"a", "b", "c"}, util.SortedKeys(m))
}

func TestParallelAllCollectsEveryError(t *testing.T) {
	inputs := make([]int, 30)
	for i := range inputs {
		inputs[i] = i
	}

	errs := util.ParallelAll(inputs, 4, func(n int) error {
		if n%3 == 0 {
			return fmt.Errorf("fail %d", n)
		}
		return nil
	})
	require.Len(t, errs, 10)
	// errors come back in input order
	require.EqualError(t, errs[0], "fail 0")
	require.EqualError(t, errs[9], "fail 27")
}

func TestParallelFirstError(t *testing.T) {
	sentinel := errors.New("boom")
	err := util.Parallel([]int{1, 2, 3}, 2, func(n int) error {
		if n == 2 {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestParallelRunsEverything(t *testing.T) {
	var ran atomic.Int64
	inputs := make([]int, 100)
	require.NoError(t, util.Parallel(inputs, util.WorkerCount(), func(int) error {
		ran.Add(1)
		return nil
	}))
	require.EqualValues(t, 100, ran.Load())
}
