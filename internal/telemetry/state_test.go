package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glove_go/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStateFusionTakesPrecedenceOverSFLP(t *testing.T) {
	s := NewState()

	s.Ingest("SFLP q:[0,1,0,0]")
	snap := s.Snapshot()
	require.NotNil(t, snap.Active)
	assert.Equal(t, models.SourceSFLP, snap.ActiveSource)

	s.Ingest("FUSION q:[1,0,0,0]")
	snap = s.Snapshot()
	require.NotNil(t, snap.Fusion)
	require.NotNil(t, snap.SFLP)
	assert.Equal(t, models.SourceFusion, snap.ActiveSource)
	assert.Equal(t, *snap.Fusion, *snap.Active)
}

func TestStateQuaternionIsNormalized(t *testing.T) {
	s := NewState()

	s.Ingest("FUSION q:[2,0,0,0]")

	snap := s.Snapshot()
	require.NotNil(t, snap.Fusion)
	assert.InDelta(t, 1.0, snap.Fusion.W, 1e-9)
	assert.Zero(t, snap.Fusion.X)
}

func TestStateRejectsInvalidQuaternionKeepsPrevious(t *testing.T) {
	s := NewState()
	s.Ingest("FUSION q:[1,0,0,0]")

	before := s.Snapshot()
	require.NotNil(t, before.Fusion)

	s.Ingest("FUSION q:[0,0,0,0]")
	s.Ingest("FUSION q:[nan,0,0,0]")
	s.Ingest("FUSION q:[1,0,0]")

	after := s.Snapshot()
	require.NotNil(t, after.Fusion)
	assert.Equal(t, *before.Fusion, *after.Fusion)
}

func TestStateSingleLineUpdatesMultipleChannels(t *testing.T) {
	s := NewState()

	s.Ingest("FUSION q:[1,0,0,0] POS:[0.1,0.2,0.3] M:[10,-5,3]")

	snap := s.Snapshot()
	require.NotNil(t, snap.Fusion)
	require.NotNil(t, snap.Position)
	require.NotNil(t, snap.Mag)
	assert.InDelta(t, 0.2, snap.Position.Y, 1e-9)
	assert.InDelta(t, -5.0, snap.Mag.Y, 1e-9)
}

func TestStatePunchEventIsAtomic(t *testing.T) {
	s := NewState()

	s.Ingest("Punch detected: 8.4 m/s hv=12.5 deg vv=-3.0 deg")

	snap := s.Snapshot()
	require.NotNil(t, snap.Punch)
	assert.InDelta(t, 8.4, snap.Punch.Velocity, 1e-9)
	assert.InDelta(t, 12.5, snap.Punch.HorizontalDeg, 1e-9)
	assert.InDelta(t, -3.0, snap.Punch.VerticalDeg, 1e-9)
	assert.False(t, snap.PunchTime.IsZero())
}

func TestStateFlexReading(t *testing.T) {
	s := NewState()

	s.Ingest("I (99) FLEX: Flex value changed: 1 -> 2 (raw median: 512, MIDI: 64)")

	snap := s.Snapshot()
	require.NotNil(t, snap.Flex)
	assert.Equal(t, 2, snap.Flex.Value)
	assert.Equal(t, 512, snap.Flex.RawMedian)
	assert.Equal(t, 64, snap.Flex.MIDI)
}

func TestStateBatteryAndRSSI(t *testing.T) {
	s := NewState()

	s.Ingest("BATT: 85.5 % 3.92 V")
	s.Ingest("RSSI: -60 dBm")

	snap := s.Snapshot()
	require.NotNil(t, snap.BatteryPercent)
	require.NotNil(t, snap.BatteryVolts)
	require.NotNil(t, snap.RSSI)
	assert.InDelta(t, 85.5, *snap.BatteryPercent, 1e-9)
	assert.InDelta(t, 3.92, *snap.BatteryVolts, 1e-9)
	assert.Equal(t, -60, *snap.RSSI)
}

func TestStateHeartbeatOnUnmatchedLine(t *testing.T) {
	s := NewState()
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(now)

	s.Ingest("texto qualquer sem padrões")

	snap := s.Snapshot()
	assert.Equal(t, now, snap.LastUpdate)
	assert.Nil(t, snap.Fusion)
	assert.Nil(t, snap.Active)
	assert.Nil(t, snap.Position)
}

func TestSnapshotIsIsolatedCopy(t *testing.T) {
	s := NewState()
	s.Ingest("FUSION q:[1,0,0,0]")

	snap := s.Snapshot()
	require.NotNil(t, snap.Fusion)
	snap.Fusion.W = -99

	fresh := s.Snapshot()
	assert.InDelta(t, 1.0, fresh.Fusion.W, 1e-9)
}

func TestParseQuat(t *testing.T) {
	q, ok := ParseQuat(" 0, 2, 0, 0 ")
	require.True(t, ok)
	assert.InDelta(t, 1.0, q.X, 1e-9)

	_, ok = ParseQuat("1,0,0")
	assert.False(t, ok)

	_, ok = ParseQuat("1,0,0,abc")
	assert.False(t, ok)

	_, ok = ParseQuat("0,0,0,0")
	assert.False(t, ok)

	_, ok = ParseQuat("inf,0,0,0")
	assert.False(t, ok)
}

func TestParseVec3(t *testing.T) {
	v, ok := ParseVec3("1.5, -2, 3")
	require.True(t, ok)
	assert.Equal(t, models.Vector3{X: 1.5, Y: -2, Z: 3}, v)

	_, ok = ParseVec3("1,2")
	assert.False(t, ok)

	_, ok = ParseVec3("1,2,nan")
	assert.False(t, ok)
}
