package room

type SetRoomParams struct {
	RoomId       string
	JoinCode     string
	HostWriterId string
	CreatedAt    int64
}

type SetJoinCodeParams struct {
	JoinCode string
	RoomId   string
}

type SetPlaybackStateParams struct {
	State  PlaybackState
	RoomId string
}

type SetGuestParams struct {
	Guest   Guest
	GuestId string
	RoomId  string
}

type RemoveGuestParams struct {
	GuestId string
	RoomId  string
}

type GetGuestParams struct {
	GuestId string
	RoomId  string
}

type UpdateGuestIsConnectedParams struct {
	GuestId     string
	RoomId      string
	IsConnected bool
}

type AddQueueEntryParams struct {
	Entry   QueueEntry
	EntryId string
	RoomId  string
}

type GetQueueEntryParams struct {
	EntryId string
	RoomId  string
}
