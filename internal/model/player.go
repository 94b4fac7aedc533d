package model

import "time"

// PlayerID identifies a player. Ids are assigned by the record store
// and rebound to the connection id on re-login.
type PlayerID int64

// BotPlayerID is the reserved id of the bot opponent. It is never
// present in the record store; IsBot is the single place that knows it.
const BotPlayerID PlayerID = -1

// IsBot reports whether this id denotes the bot opponent
func (id PlayerID) IsBot() bool {
	return id == BotPlayerID
}

// Player is a registered participant with a cumulative win count
type Player struct {
	ID           PlayerID
	Name         string
	PasswordHash string // bcrypt hash
	Wins         int
	CreatedAt    time.Time
}
