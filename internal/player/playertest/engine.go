// Package playertest provides an in-memory playback engine for tests.
// Commands mutate state and emit the events a real engine would.
package playertest

import (
	"sync"

	"github.com/crossparty/server/internal/player"
)

type Engine struct {
	mu       sync.Mutex
	events   chan player.Event
	current  *player.Track
	playing  bool
	position int

	loads   []player.Track
	pauses  int
	resumes int
	seeks   []int
}

func New() *Engine {
	return &Engine{events: make(chan player.Event, 32)}
}

func (e *Engine) Load(track player.Track, autoplay bool) error {
	e.mu.Lock()
	t := track
	e.current = &t
	e.playing = autoplay
	e.position = 0
	e.loads = append(e.loads, track)
	e.mu.Unlock()

	if autoplay {
		e.Emit(player.Event{Type: player.EventPlay, Track: &t})
	}

	return nil
}

func (e *Engine) Pause() error {
	e.mu.Lock()
	e.playing = false
	e.pauses++
	position := e.position
	e.mu.Unlock()

	e.Emit(player.Event{Type: player.EventPause, Position: position})

	return nil
}

func (e *Engine) Resume() error {
	e.mu.Lock()
	e.playing = true
	e.resumes++
	position := e.position
	e.mu.Unlock()

	e.Emit(player.Event{Type: player.EventResume, Position: position})

	return nil
}

func (e *Engine) Seek(positionMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.position = positionMs
	e.seeks = append(e.seeks, positionMs)

	return nil
}

func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.position
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.playing
}

func (e *Engine) Current() *player.Track {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.current
}

func (e *Engine) Events() <-chan player.Event {
	return e.events
}

// Emit injects an event as if the engine produced it.
func (e *Engine) Emit(ev player.Event) {
	e.events <- ev
}

// SetPosition fakes playback progress without emitting an event.
func (e *Engine) SetPosition(positionMs int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.position = positionMs
}

func (e *Engine) LoadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.loads)
}

func (e *Engine) LastLoad() player.Track {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.loads) == 0 {
		return player.Track{}
	}

	return e.loads[len(e.loads)-1]
}

func (e *Engine) PauseCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.pauses
}

func (e *Engine) ResumeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.resumes
}

func (e *Engine) SeekCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.seeks)
}

func (e *Engine) LastSeek() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.seeks) == 0 {
		return -1
	}

	return e.seeks[len(e.seeks)-1]
}
