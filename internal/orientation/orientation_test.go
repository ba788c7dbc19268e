package orientation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlphaIsInverted(t *testing.T) {
	h, ok := AlphaEvent(90).Reading().Heading()
	require.True(t, ok)
	assert.Equal(t, 270.0, h)
}

func TestAlphaZeroIsNorth(t *testing.T) {
	h, ok := AlphaEvent(0).Reading().Heading()
	require.True(t, ok)
	assert.Equal(t, 0.0, h)
}

func TestCompassPassesThrough(t *testing.T) {
	h, ok := CompassEvent(45).Reading().Heading()
	require.True(t, ok)
	assert.Equal(t, 45.0, h)
}

func TestCompassIsNotRenormalized(t *testing.T) {
	for _, v := range []float64{0, 359.9, 360, -5} {
		h, ok := CompassEvent(v).Reading().Heading()
		require.True(t, ok)
		assert.Equal(t, v, h)
	}
}

func TestPoseYawIsWrapped(t *testing.T) {
	h, ok := Pose{Yaw: -30}.Reading().Heading()
	require.True(t, ok)
	assert.Equal(t, 330.0, h)
}

func TestCompassWinsOverAlpha(t *testing.T) {
	heading, alpha := 45.0, 90.0
	r := Event{CompassHeading: &heading, Alpha: &alpha}.Reading()
	assert.Equal(t, Compass, r.Kind)

	h, ok := r.Heading()
	require.True(t, ok)
	assert.Equal(t, 45.0, h)
}

func TestEmptyEventHasNoHeading(t *testing.T) {
	r := Event{}.Reading()
	assert.Equal(t, None, r.Kind)

	_, ok := r.Heading()
	assert.False(t, ok)
}

func TestEventJSON(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"alpha": 10}`), &e))
	assert.Equal(t, Alpha, e.Reading().Kind)

	e = Event{}
	require.NoError(t, json.Unmarshal([]byte(`{"webkitCompassHeading": 0}`), &e))
	r := e.Reading()
	assert.Equal(t, Compass, r.Kind)
	assert.Equal(t, 0.0, r.Value)

	e = Event{}
	require.NoError(t, json.Unmarshal([]byte(`{"alpha": null}`), &e))
	assert.Equal(t, None, e.Reading().Kind)
}

func TestPoseReadingUsesYaw(t *testing.T) {
	h, ok := Pose{Yaw: 370}.Reading().Heading()
	require.True(t, ok)
	assert.InDelta(t, 10.0, h, 1e-9)
}

func TestMockSourceYawSweeps(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	src := newMockSourceAt(func() time.Time { return now })

	now = base.Add(3 * time.Second)
	p, err := src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 90.0, p.Yaw, 1e-9)

	now = base.Add(13 * time.Second)
	p, err = src.Next()
	require.NoError(t, err)
	assert.InDelta(t, 30.0, p.Yaw, 1e-9)
}
