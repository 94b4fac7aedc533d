package model

import "github.com/gridfleet/seabattle/internal/dependencies/random"

// GameID uniquely identifies a game
type GameID int64

// GameStatus is the derived phase of a game. It is never stored: it is
// computed from fleet occupancy and the winner on every query.
type GameStatus string

const (
	GameCreated  GameStatus = "created"  // waiting for fleets
	GameStarted  GameStatus = "started"  // both fleets placed, no winner
	GameFinished GameStatus = "finished" // winner decided
)

// Game is the state machine for one match: two players, two boards and
// two fleets (index-aligned), the current turn and an optional winner.
// Game itself is not safe for concurrent use; callers serialize
// mutations per game.
type Game struct {
	id      GameID
	players [2]PlayerID
	boards  [2]*Board
	ships   [2][]*Ship
	current int
	winner  *PlayerID
	rnd     random.Random
}

// NewGame creates a game between the two given players with empty boards
func NewGame(id GameID, players [2]PlayerID, boardSize int, rnd random.Random) *Game {
	return &Game{
		id:      id,
		players: players,
		boards:  [2]*Board{NewBoard(boardSize), NewBoard(boardSize)},
		rnd:     rnd,
	}
}

// ID returns the game id
func (g *Game) ID() GameID {
	return g.id
}

// Players returns both participants in index order
func (g *Game) Players() []PlayerID {
	return []PlayerID{g.players[0], g.players[1]}
}

// HasPlayer reports whether the given player participates in this game
func (g *Game) HasPlayer(player PlayerID) bool {
	return g.playerIndex(player) >= 0
}

// CurrentPlayer returns the player currently permitted to attack
func (g *Game) CurrentPlayer() PlayerID {
	return g.players[g.current]
}

// EnemyPlayer returns the opponent of the current turn holder
func (g *Game) EnemyPlayer() PlayerID {
	return g.players[g.enemyIndex()]
}

// Winner returns the winning player, if decided
func (g *Game) Winner() (PlayerID, bool) {
	if g.winner == nil {
		return 0, false
	}
	return *g.winner, true
}

// ShipsOf returns the fleet of the given player, or nil for a non-participant
func (g *Game) ShipsOf(player PlayerID) []*Ship {
	idx := g.playerIndex(player)
	if idx < 0 {
		return nil
	}
	return g.ships[idx]
}

// Status derives the game phase: finished once a winner is set, started
// while both sides have a non-empty fleet, created otherwise.
func (g *Game) Status() GameStatus {
	switch {
	case g.winner != nil:
		return GameFinished
	case len(g.ships[0]) > 0 && len(g.ships[1]) > 0:
		return GameStarted
	default:
		return GameCreated
	}
}

// PlaceShips stores the fleet for one side. The first turn is
// re-randomized on every successful call, so the order is only settled
// by whichever side places second. Pinned by tests; do not "fix" it to
// randomize once.
//
// No geometric validation is performed here: random placement produces
// legal fleets and manually supplied fleets are trusted from the
// validated transport boundary.
func (g *Game) PlaceShips(player PlayerID, ships []*Ship) error {
	if g.Status() == GameFinished {
		return &GameFinishedError{GameID: g.id, PlayerID: player}
	}
	idx := g.playerIndex(player)
	if idx < 0 {
		return &InvalidPlayerError{GameID: g.id, PlayerID: player}
	}
	if len(g.ships[idx]) > 0 {
		return &ShipsAlreadyPlacedError{GameID: g.id, PlayerID: player}
	}
	g.ships[idx] = ships
	g.current = g.rnd.Intn(2)
	return nil
}

// PlaceRandomShips builds a legal random fleet with the given lengths
// and places it for the player. Ships are kept one cell apart: each
// placed ship reserves its occupied and surrounding cells on a scratch
// board before the next one is placed.
func (g *Game) PlaceRandomShips(player PlayerID, lengths []int) error {
	scratch := NewBoard(g.boards[0].Size())
	ships := make([]*Ship, 0, len(lengths))
	for _, length := range lengths {
		vertical := g.rnd.Intn(2) == 1
		ship := NewShip(Position{}, length, vertical)
		if !placeShipRandomly(scratch, ship, g.rnd) {
			return &RandomShipsPlacementFailedError{GameID: g.id, PlayerID: player}
		}
		// Any resolved state reserves the cells for clearance purposes.
		scratch.SetAll(ship.Positions(), CellMiss)
		scratch.SetAll(ship.AroundPositions(), CellMiss)
		ships = append(ships, ship)
	}
	return g.PlaceShips(player, ships)
}

// placeShipRandomly tries empty anchors in random order, probing the
// ship's current orientation and then the flipped one at each anchor.
// Returns false when no anchor admits either orientation.
func placeShipRandomly(scratch *Board, ship *Ship, rnd random.Random) bool {
	anchors := scratch.EmptyPositions()
	for i := len(anchors) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		anchors[i], anchors[j] = anchors[j], anchors[i]
	}
	for _, anchor := range anchors {
		ship.SetAnchor(anchor)
		if scratch.AllEmpty(ship.Positions()) {
			return true
		}
		ship.SetVertical(!ship.Vertical())
		if scratch.AllEmpty(ship.Positions()) {
			return true
		}
	}
	return false
}

// Attack resolves one shot by the given player.
//
// Out-of-turn attacks and attacks on already-resolved cells return an
// empty result with no state change; both are deliberate silent no-ops.
// With no explicit position, a uniformly random empty cell on the
// opponent's board is chosen. A miss passes the turn; a hit or a kill
// keeps it. When a ship is destroyed, every occupied cell is marked hit
// and every in-bounds buffer cell is marked miss, then both fleets are
// checked for a winner.
func (g *Game) Attack(player PlayerID, pos *Position) ([]AttackResult, error) {
	if player != g.CurrentPlayer() {
		return nil, nil
	}
	if g.Status() != GameStarted {
		return nil, &GameNotStartedError{GameID: g.id, PlayerID: player}
	}

	enemyBoard := g.boards[g.enemyIndex()]

	var target Position
	if pos != nil {
		target = *pos
	} else {
		picked, ok := enemyBoard.RandomEmptyPosition(g.rnd)
		if !ok {
			return nil, &RandomAttackFailedError{GameID: g.id, PlayerID: player}
		}
		target = picked
	}

	// Duplicate-shot protection: a resolved (or out-of-bounds) target
	// changes nothing.
	if !enemyBoard.IsEmpty(target) {
		return nil, nil
	}

	var damaged *Ship
	for _, ship := range g.ships[g.enemyIndex()] {
		if ship.Shot(target) {
			damaged = ship
			break
		}
	}

	if damaged == nil {
		enemyBoard.Set(target, CellMiss)
		g.current = g.enemyIndex()
		return []AttackResult{{Player: player, Status: AttackMiss, Position: target}}, nil
	}

	if !damaged.IsDestroyed() {
		enemyBoard.Set(target, CellHit)
		return []AttackResult{{Player: player, Status: AttackShot, Position: target}}, nil
	}

	var decks, buffer []Position
	for _, p := range damaged.Positions() {
		if enemyBoard.Contains(p) {
			decks = append(decks, p)
		}
	}
	for _, p := range damaged.AroundPositions() {
		if enemyBoard.Contains(p) {
			buffer = append(buffer, p)
		}
	}
	enemyBoard.SetAll(decks, CellHit)
	enemyBoard.SetAll(buffer, CellMiss)

	g.checkWinner()

	results := make([]AttackResult, 0, len(decks)+len(buffer))
	for _, p := range decks {
		results = append(results, AttackResult{Player: player, Status: AttackKilled, Position: p})
	}
	for _, p := range buffer {
		results = append(results, AttackResult{Player: player, Status: AttackMiss, Position: p})
	}
	return results, nil
}

// Surrender ends the game in favor of the opponent of the surrendering
// player, regardless of whose turn it is.
func (g *Game) Surrender(player PlayerID) error {
	if g.playerIndex(player) < 0 {
		return &InvalidPlayerError{GameID: g.id, PlayerID: player}
	}
	winner := g.CurrentPlayer()
	if player == g.CurrentPlayer() {
		winner = g.EnemyPlayer()
	}
	g.winner = &winner
	return nil
}

func (g *Game) playerIndex(player PlayerID) int {
	for i, p := range g.players {
		if p == player {
			return i
		}
	}
	return -1
}

func (g *Game) enemyIndex() int {
	return (g.current + 1) % 2
}

// checkWinner inspects both fleets after a kill. The check is
// symmetric: a fully destroyed own fleet also decides the game, which
// matters on the forfeiture path.
func (g *Game) checkWinner() {
	if fleetDestroyed(g.ships[g.enemyIndex()]) {
		winner := g.CurrentPlayer()
		g.winner = &winner
	}
	if fleetDestroyed(g.ships[g.current]) {
		winner := g.EnemyPlayer()
		g.winner = &winner
	}
}

func fleetDestroyed(ships []*Ship) bool {
	for _, ship := range ships {
		if !ship.IsDestroyed() {
			return false
		}
	}
	return true
}
