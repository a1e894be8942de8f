package models

import "fmt"

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&Form{},
		&Question{},
		&Option{},
		&GameSession{},
		&Player{},
		&PlayerResponse{},
	}
}

func ChannelFor(sessionID uint) string {
	return fmt.Sprintf("game:%d", sessionID)
}
