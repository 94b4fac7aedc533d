package model

// Position identifies a cell on the board
type Position struct {
	X int `json:"x"` // 0-indexed column from the left
	Y int `json:"y"` // 0-indexed row from the top
}

// CellState is the resolution state of a single board cell
type CellState int

const (
	CellUnknown CellState = iota // not yet attacked
	CellMiss
	CellHit
)

// AttackStatus is the outcome of one attack for one affected cell
type AttackStatus string

const (
	AttackMiss   AttackStatus = "miss"
	AttackShot   AttackStatus = "shot"
	AttackKilled AttackStatus = "killed"
)

// AttackResult describes the effect of an attack on a single cell
type AttackResult struct {
	Player   PlayerID
	Status   AttackStatus
	Position Position
}
