package room

type Room struct {
	RoomId         string   `json:"room_id"`
	ParticipantIds []string `json:"participant_ids"`
}
