package protocol

// Builders for room-bound messages, as the mediator would send them. Used by
// tests and by tooling that simulates a mediator.

type presence struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Version  int64  `json:"version,omitempty"`
}

type roomChat struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

// RoomHello builds roomHello,<roomId>,{"userId","username","version"}
func RoomHello(roomID, userID, username string, version int64) Message {
	return NewMessage(TargetRoomHello, roomID, marshal(presence{UserID: userID, Username: username, Version: version}))
}

// RoomJoin builds roomJoin,<roomId>,{"userId","username","version"}
func RoomJoin(roomID, userID, username string, version int64) Message {
	return NewMessage(TargetRoomJoin, roomID, marshal(presence{UserID: userID, Username: username, Version: version}))
}

// RoomGoodbye builds roomGoodbye,<roomId>,{"userId","username"}
func RoomGoodbye(roomID, userID, username string) Message {
	return NewMessage(TargetRoomGoodbye, roomID, marshal(presence{UserID: userID, Username: username}))
}

// RoomPart builds roomPart,<roomId>,{"userId","username"}
func RoomPart(roomID, userID, username string) Message {
	return NewMessage(TargetRoomPart, roomID, marshal(presence{UserID: userID, Username: username}))
}

// RoomMessage builds room,<roomId>,{"userId","username","content"}
func RoomMessage(roomID, userID, username, content string) Message {
	return NewMessage(TargetRoom, roomID, marshal(roomChat{UserID: userID, Username: username, Content: content}))
}
