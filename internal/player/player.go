package player

type EventType string

const (
	EventPlay     EventType = "play"
	EventPause    EventType = "pause"
	EventResume   EventType = "resume"
	EventProgress EventType = "progress"
	EventFinish   EventType = "finish"
)

type Track struct {
	Title    string
	Artist   string
	Album    string
	URL      string
	ImageURL string
	Duration int
}

// Event is emitted by the local playback engine. Position is in
// milliseconds.
type Event struct {
	Type     EventType
	Track    *Track
	Position int
}

// Engine is the device-local playback engine the sync core drives. Its
// internal decoding and streaming are out of scope; the sync core only
// issues these commands and consumes Events.
type Engine interface {
	// Load loads a track, starting playback immediately when autoplay
	// is set.
	Load(track Track, autoplay bool) error
	Pause() error
	Resume() error
	Seek(positionMs int) error
	Position() int
	IsPlaying() bool
	Current() *Track
	Events() <-chan Event
}
