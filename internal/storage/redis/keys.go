package redis

import (
	"fmt"

	"github.com/gridfleet/seabattle/internal/model"
)

// Key prefix for all record store data
const keyPrefix = "seabattle"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

// playerNameIndexKey returns the Redis key for the name -> player id index
func playerNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:player_name:%s", keyPrefix, name)
}

// playersIndexKey returns the Redis key for the SET of all player ids
func playersIndexKey() string {
	return fmt.Sprintf("%s:players", keyPrefix)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%d", keyPrefix, id)
}

// roomOwnerIndexKey returns the Redis key for the owner -> room id index
func roomOwnerIndexKey(ownerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:room_owner:%d", keyPrefix, ownerID)
}

// roomsIndexKey returns the Redis key for the SET of all room ids
func roomsIndexKey() string {
	return fmt.Sprintf("%s:rooms", keyPrefix)
}

// playerCounterKey returns the Redis key of the player id sequence
func playerCounterKey() string {
	return fmt.Sprintf("%s:ctr:player", keyPrefix)
}

// roomCounterKey returns the Redis key of the room id sequence
func roomCounterKey() string {
	return fmt.Sprintf("%s:ctr:room", keyPrefix)
}
