package protocol

import "encoding/json"

// Payloads: join-room carries JoinRoomPayload, participant-joined and
// participant-left a participant id string, video-url a url string,
// video-control a PlaybackCommand.
const (
	TypeJoinRoom          = "join-room"
	TypeParticipantJoined = "participant-joined"
	TypeParticipantLeft   = "participant-left"
	TypeVideoURL          = "video-url"
	TypeVideoControl      = "video-control"
	TypeError             = "error"
)

// Message is the envelope of every frame exchanged with the relay.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type JoinRoomPayload struct {
	RoomId        string `json:"room_id"`
	ParticipantId string `json:"participant_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
)

// PlaybackCommand is an instruction, not a state: the relay neither orders nor retains it.
type PlaybackCommand struct {
	Action      Action  `json:"action"`
	CurrentTime float64 `json:"currentTime"`
}
