package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/enclosure-controller/internal/logic"
)

func TestLoadErasedStoreYieldsDefaults(t *testing.T) {
	s, err := Load(NewMemStore())
	assert.Error(t, err, "erased cells are reported")
	assert.Equal(t, Default(), s)
	for _, h := range s.Humidity {
		assert.Equal(t, 65, h.Threshold)
		assert.False(t, h.Enabled)
	}
	assert.True(t, s.AutoShutoff)
	assert.True(t, s.BeepOnPush)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := NewMemStore()
	want := Default()
	want.Humidity[logic.ChannelZone2] = logic.HumidityAlarm{Enabled: true, Threshold: 45}
	want.Humidity[logic.ChannelFilament1].Threshold = 100
	want.AutoShutoff = false

	require.NoError(t, want.Save(st))
	assert.Equal(t, 1, st.Commits)

	got, err := Load(st)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLegacyOffsets(t *testing.T) {
	st := NewMemStore()
	require.NoError(t, SaveThreshold(st, logic.ChannelZone1, 31))
	require.NoError(t, SaveThreshold(st, logic.ChannelZone2, 32))
	require.NoError(t, SaveThreshold(st, logic.ChannelFilament1, 33))
	require.NoError(t, SaveThreshold(st, logic.ChannelFilament2, 34))
	require.NoError(t, SaveAlarm(st, logic.ChannelFilament2, true))

	for off, want := range map[int]int32{0: 31, 4: 32, 8: 33, 12: 34} {
		v, err := st.GetInt(off)
		require.NoError(t, err)
		assert.Equal(t, want, v, "offset %d", off)
	}
	on, err := st.GetBool(19)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, 5, st.Commits, "every edit commits")
}

func TestOutOfRangeThresholdFallsBack(t *testing.T) {
	st := NewMemStore()
	require.NoError(t, Default().Save(st))
	require.NoError(t, st.PutInt(8, 12))

	s, err := Load(st)
	assert.ErrorContains(t, err, "filament1 threshold: 12 out of range")
	assert.Equal(t, DefaultHumidity, s.Humidity[logic.ChannelFilament1].Threshold)
}

func TestImageBounds(t *testing.T) {
	img := NewImage()
	assert.ErrorIs(t, img.PutInt(ImageSize-2, 1), ErrOffset)
	_, err := img.GetBool(-1)
	assert.ErrorIs(t, err, ErrOffset)
	assert.NoError(t, img.PutInt(ImageSize-4, -7))
	v, err := img.GetInt(ImageSize - 4)
	require.NoError(t, err)
	assert.Equal(t, int32(-7), v)
}

func TestCommitErrorSurfaces(t *testing.T) {
	st := NewMemStore()
	st.CommitError = errors.New("flash worn out")
	err := SaveBeepOnPush(st, false)
	assert.ErrorContains(t, err, "flash worn out")

	// The staged value is not rolled back.
	on, gerr := st.GetBool(offBeepOnPush)
	require.NoError(t, gerr)
	assert.False(t, on)
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "settings.bin")

	st, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, SaveThreshold(st, logic.ChannelZone1, 45))
	require.NoError(t, SaveAutoShutoff(st, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, ImageSize)

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	s, _ := Load(reopened)
	assert.Equal(t, 45, s.Humidity[logic.ChannelZone1].Threshold)
	assert.False(t, s.AutoShutoff)
}
