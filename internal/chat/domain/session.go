package domain

import "time"

// Session login session cached in redis, keyed by token
type Session struct {
	Token        string    `json:"Token"`
	UserID       string    `json:"UserID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsExpired check the session passed its deadline
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}
