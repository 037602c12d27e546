package jobs_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"jobsh/internal/jobs"
)

func TestRegisterAssignsIncreasingIDs(t *testing.T) {
	table := jobs.NewTable(10, nil)

	first, err := table.Register(100, "sleep 100", jobs.Running)
	require.NoError(t, err)
	second, err := table.Register(200, "sleep 200", jobs.Running)
	require.NoError(t, err)

	require.Equal(t, 1, first.ID)
	require.Equal(t, 2, second.ID)
}

func TestIDsNeverReusedAfterRemove(t *testing.T) {
	table := jobs.NewTable(10, nil)

	seen := map[int]bool{}
	last := 0
	for pid := 1; pid <= 20; pid++ {
		job, err := table.Register(pid, "true", jobs.Running)
		require.NoError(t, err)
		require.Greater(t, job.ID, last)
		require.False(t, seen[job.ID], "id %d handed out twice", job.ID)
		seen[job.ID] = true
		last = job.ID

		if pid%2 == 0 {
			table.Remove(pid)
			table.Remove(pid - 1)
		}
	}
	require.Equal(t, 0, table.Len())
}

func TestRegisterFull(t *testing.T) {
	table := jobs.NewTable(2, nil)

	_, err := table.Register(1, "a", jobs.Running)
	require.NoError(t, err)
	_, err = table.Register(2, "b", jobs.Running)
	require.NoError(t, err)

	job, err := table.Register(3, "c", jobs.Running)
	require.True(t, errors.Is(err, jobs.ErrTableFull))
	require.Equal(t, 0, job.ID)
	require.Equal(t, 3, job.PID)
	require.Equal(t, 2, table.Len())

	// A rejected registration does not burn an ID.
	table.Remove(1)
	job, err = table.Register(4, "d", jobs.Running)
	require.NoError(t, err)
	require.Equal(t, 3, job.ID)
}

func TestUnknownPIDIsNoOp(t *testing.T) {
	table := jobs.NewTable(4, nil)
	_, err := table.Register(10, "sleep 1", jobs.Running)
	require.NoError(t, err)

	table.Remove(99)
	table.SetState(99, jobs.Stopped)

	list := table.List()
	require.Len(t, list, 1)
	require.Equal(t, jobs.Running, list[0].State)
}

func TestFind(t *testing.T) {
	table := jobs.NewTable(4, nil)
	registered, err := table.Register(42, "sleep 5", jobs.Running)
	require.NoError(t, err)

	byPID, ok := table.FindByPID(42)
	require.True(t, ok)
	require.Equal(t, registered, byPID)

	byID, ok := table.FindByID(registered.ID)
	require.True(t, ok)
	require.Equal(t, registered, byID)

	_, ok = table.FindByPID(43)
	require.False(t, ok)
	_, ok = table.FindByID(7)
	require.False(t, ok)
}

func TestSetStateAndListOrder(t *testing.T) {
	table := jobs.NewTable(4, nil)
	for _, pid := range []int{30, 10, 20} {
		_, err := table.Register(pid, "sleep", jobs.Running)
		require.NoError(t, err)
	}
	table.SetState(10, jobs.Stopped)
	table.Remove(30)

	list := table.List()
	require.Len(t, list, 2)
	require.Equal(t, 2, list[0].ID)
	require.Equal(t, jobs.Stopped, list[0].State)
	require.Equal(t, 3, list[1].ID)
	require.Equal(t, jobs.Running, list[1].State)
}

func TestListIsACopy(t *testing.T) {
	table := jobs.NewTable(4, nil)
	_, err := table.Register(1, "sleep", jobs.Running)
	require.NoError(t, err)

	list := table.List()
	list[0].State = jobs.Stopped

	job, ok := table.FindByPID(1)
	require.True(t, ok)
	require.Equal(t, jobs.Running, job.State)
}

func TestConcurrentAccess(t *testing.T) {
	table := jobs.NewTable(1000, nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				pid := base*1000 + i
				_, _ = table.Register(pid, "x", jobs.Running)
				table.SetState(pid, jobs.Stopped)
				_ = table.List()
				table.Remove(pid)
			}
		}(w + 1)
	}
	wg.Wait()

	require.Equal(t, 0, table.Len())
	job, err := table.Register(1, "x", jobs.Running)
	require.NoError(t, err)
	require.Equal(t, 401, job.ID)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "Running", jobs.Running.String())
	require.Equal(t, "Stopped", jobs.Stopped.String())
	require.Equal(t, "Done", jobs.Done.String())
	require.Equal(t, "Unknown", jobs.State(9).String())
}

func TestZeroCapacityFallsBackToDefault(t *testing.T) {
	table := jobs.NewTable(0, nil)
	require.Equal(t, jobs.DefaultCapacity, table.Cap())
}
