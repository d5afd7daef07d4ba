package party

import (
	"time"

	"github.com/google/uuid"
)

// WriterId tags every state mutation with the instance that produced
// it. Readers compare it against their own id before side-effecting.
type WriterId string

func NewWriterId() WriterId {
	return WriterId(uuid.NewString())
}

// SessionContext identifies one participant instance within a joined
// room. Its lifecycle is bound to joining and leaving the room; there
// is no ambient session state.
type SessionContext struct {
	RoomId   string
	JoinCode string
	Writer   WriterId
	// GuestId is empty on the host.
	GuestId string
}

const (
	// DriftThreshold is the position divergence, in milliseconds, past
	// which a guest issues a hard seek. Smaller drifts are tolerated.
	DriftThreshold = 12000

	// ProgressInterval throttles host progress-tick snapshots.
	ProgressInterval = time.Second

	// RoomCheckInterval paces the guest's poll of the room record.
	// A host that dies without closing the room publishes no event;
	// the record's expiry is only observable by polling.
	RoomCheckInterval = 30 * time.Second
)
