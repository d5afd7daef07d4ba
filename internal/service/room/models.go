package room

// Playback actions.
const (
	ActionPlayTrack = "PLAY_TRACK"
	ActionPause     = "PAUSE"
	ActionResume    = "RESUME"
	ActionStop      = "STOP"
)

// Room event types.
const (
	EventPlaybackState = "PLAYBACK_STATE"
	EventGuestJoined   = "GUEST_JOINED"
	EventGuestLeft     = "GUEST_LEFT"
	EventGuestKicked   = "GUEST_KICKED"
	EventQueueAdded    = "QUEUE_ADDED"
	EventQueueDrained  = "QUEUE_DRAINED"
	EventRoomClosed    = "ROOM_CLOSED"
)

type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	URL      string `json:"url"`
	ImageURL string `json:"image,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

type PlaybackState struct {
	Track     *Track `json:"track"`
	IsPlaying bool   `json:"is_playing"`
	Position  int    `json:"position"`
	Timestamp int64  `json:"timestamp"`
	Action    string `json:"action"`
	Revision  int64  `json:"revision"`
	WriterId  string `json:"writer_id"`
}

type Guest struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	JoinedAt    int64  `json:"joined_at"`
	IsConnected bool   `json:"is_connected"`
}

type QueueEntry struct {
	Id      string `json:"id"`
	Track   Track  `json:"track"`
	AddedAt int64  `json:"added_at"`
	AddedBy string `json:"added_by"`
}

type RoomState struct {
	RoomId       string        `json:"room_id"`
	JoinCode     string        `json:"join_code"`
	HostWriterId string        `json:"host_writer_id"`
	IsActive     bool          `json:"is_active"`
	Playback     PlaybackState `json:"playback"`
	Guests       []Guest       `json:"guests"`
	Queue        []QueueEntry  `json:"queue"`
}

// Event is the change notification fanned out to room subscribers.
type Event struct {
	Type     string         `json:"type"`
	RoomId   string         `json:"room_id"`
	Playback *PlaybackState `json:"playback,omitempty"`
	Guest    *Guest         `json:"guest,omitempty"`
	GuestId  string         `json:"guest_id,omitempty"`
	Entry    *QueueEntry    `json:"entry,omitempty"`
}
