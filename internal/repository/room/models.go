package room

type Room struct {
	JoinCode     string `redis:"join_code"`
	HostWriterId string `redis:"host_writer_id"`
	IsActive     bool   `redis:"is_active"`
	CreatedAt    int64  `redis:"created_at"`
}

// PlaybackState is the shared mutable record of a room. Track fields are
// empty when no track has been loaded yet.
type PlaybackState struct {
	TrackTitle    string `redis:"track_title"`
	TrackArtist   string `redis:"track_artist"`
	TrackAlbum    string `redis:"track_album"`
	TrackURL      string `redis:"track_url"`
	TrackImageURL string `redis:"track_image_url"`
	TrackDuration int    `redis:"track_duration"`
	IsPlaying     bool   `redis:"is_playing"`
	Position      int    `redis:"position"`
	Timestamp     int64  `redis:"timestamp"`
	Action        string `redis:"action"`
	Revision      int64  `redis:"revision"`
	WriterId      string `redis:"writer_id"`
}

type Guest struct {
	Name        string `redis:"name"`
	JoinedAt    int64  `redis:"joined_at"`
	IsConnected bool   `redis:"is_connected"`
}

type QueueEntry struct {
	Title    string `redis:"title"`
	Artist   string `redis:"artist"`
	Album    string `redis:"album"`
	URL      string `redis:"url"`
	ImageURL string `redis:"image_url"`
	Duration int    `redis:"duration"`
	AddedAt  int64  `redis:"added_at"`
	AddedBy  string `redis:"added_by"`
}
