package domain

import "errors"

// Error taxonomy surfaced through failed acks. The dispatcher converts every
// handler error into {success:false, message}; none of these terminate the
// connection or the process.
var (
	// ErrAuthRequired operation needs an identity the connection lacks
	ErrAuthRequired = errors.New("Authentication required")
	// ErrInvalidCredentials login failed, deliberately vague
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrUserExists duplicate registration (username or email taken)
	ErrUserExists = errors.New("User already exists")
	// ErrUserNotFound referenced user absent
	ErrUserNotFound = errors.New("User not found")
	// ErrRoomExists duplicate room name on room:create
	ErrRoomExists = errors.New("Room already exists")
	// ErrRoomNotFound referenced room absent
	ErrRoomNotFound = errors.New("Room not found")
	// ErrMessageNotFound referenced message absent
	ErrMessageNotFound = errors.New("Message not found")
	// ErrSessionExpired cached session passed its deadline
	ErrSessionExpired = errors.New("Session expired")
)
