package board

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskcal/internal/core/datekey"
	"github.com/colonyops/taskcal/internal/core/task"
)

func newTestTaskStore(t *testing.T, repo *memTaskRepo) *TaskStore {
	t.Helper()
	s, err := OpenTaskStore(context.Background(), repo, zerolog.Nop(), testOptions()...)
	require.NoError(t, err)
	return s
}

func ptr[T any](v T) *T { return &v }

func TestTaskStore_OpenEmpty(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	assert.NotNil(t, s.List())
	assert.Empty(t, s.List())
}

func TestTaskStore_OpenLoadsPersisted(t *testing.T) {
	repo := &memTaskRepo{tasks: []task.Task{{ID: "a", Title: "x", Status: task.StatusDone, Priority: task.PriorityLow}}}
	s := newTestTaskStore(t, repo)

	require.Len(t, s.List(), 1)
	assert.Equal(t, "a", s.List()[0].ID)
}

func TestTaskStore_LoadFailureKeepsStoredTasks(t *testing.T) {
	ctx := context.Background()
	stored := []task.Task{{ID: "a", Title: "x", Status: task.StatusTodo, Priority: task.PriorityLow}}

	_, err := OpenTaskStore(ctx, &memTaskRepo{tasks: stored, loadErr: errDiskFull}, zerolog.Nop(), testOptions()...)
	require.ErrorIs(t, err, errDiskFull)

	repo := &memTaskRepo{tasks: stored}
	s := newTestTaskStore(t, repo)

	repo.loadErr = errDiskFull
	require.ErrorIs(t, s.Reload(ctx), errDiskFull)
	assert.Equal(t, stored, s.List(), "a failed reload keeps the last good collection")

	repo.loadErr = nil
	_, err = s.Add(ctx, "next", "", "")
	require.NoError(t, err)
	assert.Len(t, repo.tasks, 2, "the save still contains the earlier task")
}

func TestTaskStore_AddDefaults(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)

	got, err := s.Add(context.Background(), "  Buy milk ", "", "2024-03-18")
	require.NoError(t, err)

	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, task.StatusTodo, got.Status)
	assert.Equal(t, task.PriorityMedium, got.Priority)
	assert.Equal(t, datekey.Key("2024-03-18"), got.DueDate)
	assert.Equal(t, fixedNow().UTC(), got.CreatedAt)

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, []task.Task{got}, repo.tasks)
}

func TestTaskStore_AddRejectsBlankTitleAndBadDate(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	_, err := s.Add(ctx, "   ", "", "")
	require.ErrorIs(t, err, task.ErrInvalid)

	_, err = s.Add(ctx, "ok", "", "2024-13-01")
	require.ErrorIs(t, err, task.ErrInvalid)

	assert.Empty(t, s.List())
	assert.Zero(t, repo.saves)
}

func TestTaskStore_AddPreservesInsertionOrder(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	ctx := context.Background()

	for _, title := range []string{"c", "a", "b"} {
		_, err := s.Add(ctx, title, "", "")
		require.NoError(t, err)
	}

	var titles []string
	for _, tk := range s.List() {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"c", "a", "b"}, titles)
}

func TestTaskStore_UpdateMerges(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	added, err := s.Add(ctx, "Write report", "draft", "2024-03-20")
	require.NoError(t, err)

	err = s.Update(ctx, added.ID, task.Patch{
		Priority: ptr(task.PriorityHigh),
		DueDate:  ptr(datekey.Key("")),
	})
	require.NoError(t, err)

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "draft", got.Description)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.False(t, got.HasDueDate())
	assert.Equal(t, added.CreatedAt, got.CreatedAt)
	assert.Equal(t, 2, repo.saves)
}

func TestTaskStore_UpdateValidatesPatchedTask(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	ctx := context.Background()

	added, err := s.Add(ctx, "x", "", "")
	require.NoError(t, err)

	err = s.Update(ctx, added.ID, task.Patch{Status: ptr(task.Status("blocked"))})
	require.ErrorIs(t, err, task.ErrInvalid)

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, got.Status)
}

func TestTaskStore_NotFound(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	require.ErrorIs(t, s.Update(ctx, "missing", task.Patch{Title: ptr("x")}), task.ErrNotFound)
	require.ErrorIs(t, s.Move(ctx, "missing", task.StatusDone), task.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, "missing"), task.ErrNotFound)
	_, err := s.Get("missing")
	require.ErrorIs(t, err, task.ErrNotFound)

	assert.Zero(t, repo.saves, "failed lookups never persist")
}

func TestTaskStore_MoveOnlyChangesStatus(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	ctx := context.Background()

	added, err := s.Add(ctx, "x", "desc", "2024-03-15")
	require.NoError(t, err)

	require.NoError(t, s.Move(ctx, added.ID, task.StatusDoing))

	got, err := s.Get(added.ID)
	require.NoError(t, err)
	want := added
	want.Status = task.StatusDoing
	assert.Equal(t, want, got)
}

func TestTaskStore_Delete(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	a, err := s.Add(ctx, "a", "", "")
	require.NoError(t, err)
	b, err := s.Add(ctx, "b", "", "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Equal(t, []task.Task{b}, s.List())
	assert.Equal(t, []task.Task{b}, repo.tasks)

	c, err := s.Add(ctx, "c", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID, "ids are never reused")
}

func TestTaskStore_SaveFailureLeavesStateUnchanged(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	_, err := s.Add(ctx, "a", "", "")
	require.NoError(t, err)

	repo.failErr = errDiskFull
	_, err = s.Add(ctx, "b", "", "")
	require.ErrorIs(t, err, errDiskFull)
	assert.Len(t, s.List(), 1)
}

func TestTaskStore_ListIsACopy(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	_, err := s.Add(context.Background(), "orig", "", "")
	require.NoError(t, err)

	list := s.List()
	list[0].Title = "changed"

	assert.Equal(t, "orig", s.List()[0].Title)
}

func TestTaskStore_TasksForDateAndByStatus(t *testing.T) {
	s := newTestTaskStore(t, &memTaskRepo{})
	ctx := context.Background()

	a, err := s.Add(ctx, "a", "", "2024-03-15")
	require.NoError(t, err)
	_, err = s.Add(ctx, "b", "", "2024-03-16")
	require.NoError(t, err)
	c, err := s.Add(ctx, "c", "", "2024-03-15")
	require.NoError(t, err)
	require.NoError(t, s.Move(ctx, c.ID, task.StatusDone))

	assert.Len(t, s.TasksForDate("2024-03-15"), 2)
	assert.Empty(t, s.TasksForDate("2024-01-01"))

	todo := s.ByStatus(task.StatusTodo)
	require.Len(t, todo, 2)
	assert.Equal(t, a.ID, todo[0].ID)
	assert.Len(t, s.ByStatus(task.StatusDone), 1)
}

func TestTaskStore_Replace(t *testing.T) {
	repo := &memTaskRepo{}
	s := newTestTaskStore(t, repo)
	ctx := context.Background()

	imported := []task.Task{
		{ID: "x", Title: "one", Status: task.StatusDoing, Priority: task.PriorityHigh},
		{ID: "y", Title: "two", Status: task.StatusTodo, Priority: task.PriorityLow, DueDate: "2024-04-01"},
	}
	require.NoError(t, s.Replace(ctx, imported))
	assert.Equal(t, imported, s.List())

	bad := []task.Task{{ID: "z", Title: "", Status: task.StatusTodo, Priority: task.PriorityLow}}
	require.ErrorIs(t, s.Replace(ctx, bad), task.ErrInvalid)

	dup := []task.Task{imported[0], imported[0]}
	require.ErrorIs(t, s.Replace(ctx, dup), task.ErrInvalid)

	assert.Equal(t, imported, s.List(), "rejected imports leave the store alone")
}

func TestNewTaskID(t *testing.T) {
	now := func() time.Time { return time.UnixMilli(1710496800000) }
	id := newTaskID(now)
	assert.Regexp(t, regexp.MustCompile(`^task-1710496800000-[a-z0-9]{9}$`), id)
}
