package domain

// Inbound websocket events. Every client frame carries one of these in the
// "event" field; events marked auth-required in the dispatcher table are
// rejected with a failed ack when the connection is anonymous.
const (
	// EventAuthRegister websocket event auth:register
	EventAuthRegister = "auth:register"
	// EventAuthLogin websocket event auth:login
	EventAuthLogin = "auth:login"

	// EventMessageSend websocket event message:send
	EventMessageSend = "message:send"
	// EventMessageGet websocket event message:get
	EventMessageGet = "message:get"
	// EventMessageRead websocket event message:read
	EventMessageRead = "message:read"
	// EventMessageReaction websocket event message:reaction
	EventMessageReaction = "message:reaction"

	// EventTypingStart websocket event typing:start
	EventTypingStart = "typing:start"
	// EventTypingStop websocket event typing:stop
	EventTypingStop = "typing:stop"

	// EventRoomCreate websocket event room:create
	EventRoomCreate = "room:create"
	// EventRoomGet websocket event room:get
	EventRoomGet = "room:get"
	// EventRoomJoin websocket event room:join
	EventRoomJoin = "room:join"
)

// Outbound (server push) websocket events.
const (
	// EventUserOnline push user:online {userId, username, avatar}
	EventUserOnline = "user:online"
	// EventUserOffline push user:offline {userId, username}
	EventUserOffline = "user:offline"
	// EventUsersOnline push users:online, full snapshot of online identities
	EventUsersOnline = "users:online"

	// EventMessageNew push message:new {message}
	EventMessageNew = "message:new"
	// EventMessageReadMark push message:read {messageId, userId}
	EventMessageReadMark = "message:read"
	// EventMessageReactionUpdate push message:reaction:update {messageId, reactions}
	EventMessageReactionUpdate = "message:reaction:update"

	// EventTypingUser push typing:user {userId, username, isTyping}
	EventTypingUser = "typing:user"

	// EventRoomCreated push room:created {room}, delivered to every connection
	EventRoomCreated = "room:created"
	// EventRoomUserJoined push room:user:joined {userId, username, avatar, room}
	EventRoomUserJoined = "room:user:joined"
)

// WSRequest websocket client request
type WSRequest struct {
	Event     string `json:"event"`
	Room      string `json:"room,omitempty"`
	RoomID    string `json:"roomId,omitempty"`
	Content   string `json:"content,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Type      string `json:"type,omitempty"`
	FileURL   string `json:"fileUrl,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
	Page      int64  `json:"page,omitempty"`
	Limit     int64  `json:"limit,omitempty"`
	Name      string `json:"name,omitempty"`
	Desc      string `json:"description,omitempty"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
}

// WSResponse websocket acknowledgment, echoes the request event name.
// Error is set only on failure; Payload only on success.
type WSResponse struct {
	Event   string                 `json:"event"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"message,omitempty"`
}

// WSEvent server initiated push frame
type WSEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
