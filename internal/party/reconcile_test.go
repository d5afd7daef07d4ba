package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossparty/server/internal/player/playertest"
	roomsvc "github.com/crossparty/server/internal/service/room"
)

func newTestReconciler() (*reconciler, *playertest.Engine) {
	engine := playertest.New()
	session := &SessionContext{
		RoomId: "room-1",
		Writer: WriterId("local-writer"),
	}

	return newReconciler(session, engine), engine
}

func snapshot(rev int64, writer string, trackURL string, isPlaying bool, position int) roomsvc.PlaybackState {
	var track *roomsvc.Track
	if trackURL != "" {
		track = &roomsvc.Track{Title: "t", URL: trackURL}
	}

	return roomsvc.PlaybackState{
		Track:     track,
		IsPlaying: isPlaying,
		Position:  position,
		Action:    roomsvc.ActionPlayTrack,
		Revision:  rev,
		WriterId:  writer,
	}
}

func TestReconcilerSuppressesOwnWrites(t *testing.T) {
	rec, engine := newTestReconciler()

	err := rec.apply(snapshot(1, "local-writer", "https://cdn.example/a.mp3", true, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, engine.LoadCount())
	assert.Equal(t, int64(0), rec.lastApplied().revision)
}

func TestReconcilerDropsStaleRevisions(t *testing.T) {
	rec, engine := newTestReconciler()

	require.NoError(t, rec.apply(snapshot(3, "remote", "https://cdn.example/a.mp3", true, 0)))
	require.Equal(t, 1, engine.LoadCount())

	// lower and equal revisions must not touch the engine
	require.NoError(t, rec.apply(snapshot(2, "remote", "https://cdn.example/b.mp3", true, 0)))
	require.NoError(t, rec.apply(snapshot(3, "remote", "https://cdn.example/b.mp3", false, 0)))
	assert.Equal(t, 1, engine.LoadCount())
	assert.Equal(t, 0, engine.PauseCount())
	assert.Equal(t, "https://cdn.example/a.mp3", engine.LastLoad().URL)
}

func TestReconcilerLoadsOnTrackChange(t *testing.T) {
	rec, engine := newTestReconciler()

	require.NoError(t, rec.apply(snapshot(1, "remote", "https://cdn.example/a.mp3", true, 0)))
	require.NoError(t, rec.apply(snapshot(2, "remote", "https://cdn.example/b.mp3", true, 0)))

	assert.Equal(t, 2, engine.LoadCount())
	assert.Equal(t, "https://cdn.example/b.mp3", engine.LastLoad().URL)
	assert.True(t, engine.IsPlaying())
}

func TestReconcilerFlipsPlayFlagWithoutReload(t *testing.T) {
	rec, engine := newTestReconciler()

	require.NoError(t, rec.apply(snapshot(1, "remote", "https://cdn.example/a.mp3", true, 0)))
	require.NoError(t, rec.apply(snapshot(2, "remote", "https://cdn.example/a.mp3", false, 0)))

	assert.Equal(t, 1, engine.LoadCount())
	assert.Equal(t, 1, engine.PauseCount())
	assert.False(t, engine.IsPlaying())

	require.NoError(t, rec.apply(snapshot(3, "remote", "https://cdn.example/a.mp3", true, 0)))
	assert.Equal(t, 1, engine.ResumeCount())
	assert.True(t, engine.IsPlaying())
}

func TestReconcilerDriftCorrection(t *testing.T) {
	rec, engine := newTestReconciler()

	require.NoError(t, rec.apply(snapshot(1, "remote", "https://cdn.example/a.mp3", true, 0)))

	// within the threshold: tolerated
	engine.SetPosition(50000)
	require.NoError(t, rec.apply(snapshot(2, "remote", "https://cdn.example/a.mp3", true, 50000+DriftThreshold)))
	assert.Equal(t, 0, engine.SeekCount())

	// past the threshold, remote ahead: hard seek
	require.NoError(t, rec.apply(snapshot(3, "remote", "https://cdn.example/a.mp3", true, 50000+DriftThreshold+1)))
	require.Equal(t, 1, engine.SeekCount())
	assert.Equal(t, 50000+DriftThreshold+1, engine.LastSeek())

	// past the threshold, remote behind: hard seek back
	engine.SetPosition(200000)
	require.NoError(t, rec.apply(snapshot(4, "remote", "https://cdn.example/a.mp3", true, 100000)))
	require.Equal(t, 2, engine.SeekCount())
	assert.Equal(t, 100000, engine.LastSeek())
}

func TestReconcilerIdempotentAgainstLocalRecord(t *testing.T) {
	rec, engine := newTestReconciler()

	require.NoError(t, rec.apply(snapshot(1, "remote", "https://cdn.example/a.mp3", true, 0)))

	// the local side already paused; the mirrored confirmation must not
	// pause again
	require.NoError(t, engine.Pause())
	rec.recordLocal("https://cdn.example/a.mp3", false)

	require.NoError(t, rec.apply(snapshot(2, "remote", "https://cdn.example/a.mp3", false, 0)))
	assert.Equal(t, 1, engine.PauseCount())
	assert.Equal(t, int64(2), rec.lastApplied().revision)
}
