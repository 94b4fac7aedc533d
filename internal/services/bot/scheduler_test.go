package bot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/suite"

	"github.com/gridfleet/seabattle/internal/testutil"
)

type SchedulerSuite struct {
	suite.Suite
	clock     *quartz.Mock
	scheduler *Scheduler
	ctx       context.Context
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerSuite))
}

func (s *SchedulerSuite) SetupTest() {
	s.clock = quartz.NewMock(s.T())
	s.scheduler = NewScheduler(s.clock, time.Second, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SchedulerSuite) TestFiresAfterDelay() {
	var fired atomic.Int32
	s.scheduler.Schedule(1, func() { fired.Add(1) })
	s.True(s.scheduler.Pending(1))

	s.clock.Advance(time.Second).MustWait(s.ctx)

	s.Equal(int32(1), fired.Load())
	s.False(s.scheduler.Pending(1))
}

func (s *SchedulerSuite) TestRescheduleReplacesPendingMove() {
	var first, second atomic.Int32
	s.scheduler.Schedule(1, func() { first.Add(1) })
	s.clock.Advance(500 * time.Millisecond).MustWait(s.ctx)

	s.scheduler.Schedule(1, func() { second.Add(1) })
	s.clock.Advance(time.Second).MustWait(s.ctx)

	s.Equal(int32(0), first.Load())
	s.Equal(int32(1), second.Load())
}

func (s *SchedulerSuite) TestCancelStopsPendingMove() {
	var fired atomic.Int32
	s.scheduler.Schedule(1, func() { fired.Add(1) })
	s.scheduler.Cancel(1)
	s.False(s.scheduler.Pending(1))

	s.clock.Advance(time.Second).MustWait(s.ctx)

	s.Equal(int32(0), fired.Load())
}

func (s *SchedulerSuite) TestIndependentGamesFireIndependently() {
	var one, two atomic.Int32
	s.scheduler.Schedule(1, func() { one.Add(1) })
	s.scheduler.Schedule(2, func() { two.Add(1) })
	s.scheduler.Cancel(1)

	s.clock.Advance(time.Second).MustWait(s.ctx)

	s.Equal(int32(0), one.Load())
	s.Equal(int32(1), two.Load())
}
