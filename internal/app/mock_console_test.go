package app

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/hunt_navigator/internal/geo"
	"github.com/relabs-tech/hunt_navigator/internal/mission"
	"github.com/relabs-tech/hunt_navigator/internal/orientation"
)

// syncBuffer guards a bytes.Buffer so the test can read while the loop writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWalkerReachesTarget(t *testing.T) {
	target := testMissions[0].Target.Coordinate
	w := &walker{pos: geo.Destination(target, 225, 100), stepM: 30}

	var last float64
	for i := 0; i < 4; i++ {
		f := w.stepToward(target)
		last = geo.Distance(f.Coordinate(), target)
	}
	assert.InDelta(t, 0, last, 1e-6)
}

func TestRunWalkCompletesHunt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := &syncBuffer{}
	err := runWalk(ctx, testMissions, out, time.Millisecond, 50)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "briefing")
	assert.Contains(t, text, "debrief")
	assert.Contains(t, text, "complete")
	assert.Contains(t, text, "indicator hidden")
	assert.Equal(t, 2, strings.Count(text, "arrived"))
}

func TestRunWalkWithoutMissions(t *testing.T) {
	err := runWalk(context.Background(), nil, &syncBuffer{}, time.Millisecond, 50)
	assert.ErrorIs(t, err, mission.ErrNoMissions)
}

func TestMockEventAlternatesConventions(t *testing.T) {
	pose := orientation.Pose{Yaw: 30}

	even := mockEvent(pose, 0).Reading()
	assert.Equal(t, orientation.Compass, even.Kind)
	odd := mockEvent(pose, 1).Reading()
	assert.Equal(t, orientation.Alpha, odd.Kind)

	h1, _ := even.Heading()
	h2, _ := odd.Heading()
	assert.InDelta(t, 30, h1, 1e-9)
	assert.InDelta(t, 30, h2, 1e-9)
}
