package checkpoint_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keshon/avc/internal/checkpoint"
	"github.com/keshon/avc/internal/config"
)

func TestNewSessionBranchesFromMain(t *testing.T) {
	r, ws := testRepo(t)

	writeFile(t, ws, "f.txt", "baseline\n")
	base, err := r.MainSession().CreateCheckpoint("baseline")
	require.NoError(t, err)

	s1, err := r.NewSession()
	require.NoError(t, err)
	require.Equal(t, "session_1", s1.Ref())

	head, err := s1.Head()
	require.NoError(t, err)
	require.Equal(t, base.ID, head.String())

	s2, err := r.NewSession()
	require.NoError(t, err)
	require.Equal(t, "session_2", s2.Ref())
}

func TestSessionsAdvanceIndependently(t *testing.T) {
	r, ws := testRepo(t)

	writeFile(t, ws, "f.txt", "baseline\n")
	base, err := r.MainSession().CreateCheckpoint("baseline")
	require.NoError(t, err)

	s1, err := r.NewSession()
	require.NoError(t, err)

	writeFile(t, ws, "f.txt", "session work\n")
	_, err = s1.CreateCheckpoint("session edit")
	require.NoError(t, err)

	// main did not move
	mainHead, err := r.MainSession().Head()
	require.NoError(t, err)
	require.Equal(t, base.ID, mainHead.String())

	infos, err := s1.ListCheckpoints()
	require.NoError(t, err)
	require.Len(t, infos, 2, "session chain includes the branched-from baseline")
}

func TestConcurrentCheckpointsOnDistinctSessions(t *testing.T) {
	r, ws := testRepo(t)
	writeFile(t, ws, "shared.txt", "content\n")

	_, err := r.MainSession().CreateCheckpoint("base")
	require.NoError(t, err)

	var sessions []*checkpoint.Session
	for i := 0; i < 4; i++ {
		s, err := r.NewSession()
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *checkpoint.Session) {
			defer wg.Done()
			_, errs[i] = s.CreateCheckpoint(fmt.Sprintf("parallel %d", i))
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "session %d", i)
	}
	for _, s := range sessions {
		infos, err := s.ListCheckpoints()
		require.NoError(t, err)
		require.Len(t, infos, 2)
	}
}

func TestPromoteSessionHeadToMain(t *testing.T) {
	r, ws := testRepo(t)

	writeFile(t, ws, "f.txt", "v1\n")
	_, err := r.MainSession().CreateCheckpoint("v1")
	require.NoError(t, err)

	s, err := r.NewSession()
	require.NoError(t, err)

	writeFile(t, ws, "f.txt", "v2\n")
	approved, err := s.CreateCheckpoint("v2 approved")
	require.NoError(t, err)

	require.NoError(t, r.PromoteToMain(approved.ID))

	mainHead, err := r.MainSession().Head()
	require.NoError(t, err)
	require.Equal(t, approved.ID, mainHead.String())
}

func TestSessionHandleIsStable(t *testing.T) {
	r, _ := testRepo(t)

	a := r.MainSession()
	b, err := r.Session(config.MainRef)
	require.NoError(t, err)
	require.Same(t, a, b, "one handle per reference, shared mutex")
}

func TestActiveRefDefaultsToMain(t *testing.T) {
	r, _ := testRepo(t)
	require.Equal(t, config.MainRef, r.ActiveRef())

	s, err := r.NewSession()
	require.NoError(t, err)
	require.NoError(t, r.SetActiveRef(s.Ref()))
	require.Equal(t, s.Ref(), r.ActiveRef())
}

func TestSecondProcessIsLockedOut(t *testing.T) {
	r, ws := testRepo(t)
	_ = r

	_, err := checkpoint.Open(ws, "default")
	require.ErrorIs(t, err, checkpoint.ErrLocked)
}
