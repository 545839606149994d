package domain

type (
	RoomName string
	RoomID   string
)

// DefaultRoomID is where endpoints land when the client does not carry a
// room id on connection. Keeps the two-party reference behavior: one shared
// pairing unless rooms are used explicitly.
const DefaultRoomID = RoomID("main")

// Room scopes counterpart resolution: endpoints are only ever paired with
// members of the same room, never globally.
type Room struct {
	ID   RoomID
	Name RoomName
}
