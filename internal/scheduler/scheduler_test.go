package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KotFed0t/gold_tracker/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalJob_StartsImmediatelyWithRequestID(t *testing.T) {
	s := New()
	defer s.Stop()

	got := make(chan string, 1)
	s.NewIntervalJob("spotPrice", func(ctx context.Context) error {
		select {
		case got <- utils.GetRequestIDFromCtx(ctx):
		default:
		}
		return nil
	}, time.Hour, true)
	s.Start()

	select {
	case rqID := <-got:
		assert.NotEmpty(t, rqID)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestTaskWithRecover_SurvivesPanicAndError(t *testing.T) {
	s := New()
	defer s.Stop()

	require.NotPanics(t, func() {
		s.taskWithRecover(func(context.Context) error { panic("boom") }, "panicky")(context.Background())
	})
	require.NotPanics(t, func() {
		s.taskWithRecover(func(context.Context) error { return errors.New("fail") }, "failing")(context.Background())
	})
}
