package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/simrun/model"
	"github.com/viant/simrun/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	srv := New()
	now := time.Now()

	assert.True(t, errors.Is(srv.Save(ctx, nil), dao.ErrNilEntity))
	assert.True(t, errors.Is(srv.Save(ctx, &model.Run{}), dao.ErrInvalidID))

	running := &model.Run{ID: "r1", State: model.StateRunning, StartedAt: now}
	assert.NoError(t, srv.Save(ctx, running))
	assert.NoError(t, srv.Save(ctx, &model.Run{ID: "r2", State: model.StateSucceeded, StartedAt: now.Add(time.Second),
		Result: &model.Aggregate{Iterations: 10, Histogram: map[int]int{0: 10}}}))
	assert.NoError(t, srv.Save(ctx, &model.Run{ID: "r3", State: model.StateFailed, StartedAt: now.Add(2 * time.Second)}))

	// stored copies are isolated from callers
	running.State = model.StateFailed
	loaded, err := srv.Load(ctx, "r1")
	assert.NoError(t, err)
	assert.Equal(t, model.StateRunning, loaded.State)

	succeeded, err := srv.Load(ctx, "r2")
	assert.NoError(t, err)
	succeeded.Result.Histogram[0] = 1
	again, _ := srv.Load(ctx, "r2")
	assert.Equal(t, 10, again.Result.Histogram[0])

	all, err := srv.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(all))

	terminal, err := srv.List(ctx, dao.NewParameter("State", model.StateSucceeded, model.StateFailed))
	assert.NoError(t, err)
	assert.Equal(t, []string{"r2", "r3"}, ids(terminal))

	_, err = srv.Load(ctx, "missing")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	_, err = srv.Load(ctx, "")
	assert.True(t, errors.Is(err, dao.ErrInvalidID))

	assert.NoError(t, srv.Delete(ctx, "r1"))
	assert.True(t, errors.Is(srv.Delete(ctx, "r1"), dao.ErrNotFound))
	assert.True(t, errors.Is(srv.Delete(ctx, ""), dao.ErrInvalidID))
}

func ids(runs []*model.Run) []string {
	var ret []string
	for _, run := range runs {
		ret = append(ret, run.ID)
	}
	return ret
}
