package scrabble

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/lexicon"
)

const (
	DefaultTurnTimeout         = 90 * time.Second
	DefaultDrawOfferTimeout    = 30 * time.Second
	DefaultMaxConsecutiveSkips = 4
)

type Rules struct {
	TurnTimeout         time.Duration
	DrawOfferTimeout    time.Duration
	MaxConsecutiveSkips int
}

func DefaultRules() Rules {
	return Rules{
		TurnTimeout:         DefaultTurnTimeout,
		DrawOfferTimeout:    DefaultDrawOfferTimeout,
		MaxConsecutiveSkips: DefaultMaxConsecutiveSkips,
	}
}

type MoveResult struct {
	PlayerID string
	Words    []string
	Score    int
	Bingo    bool
	Drawn    int
}

// Engine drives the turn state machine of a game. It keeps no per-game state of
// its own; callers serialize access to each game.
type Engine struct {
	lexicon lexicon.Lexicon
	rules   Rules
	now     func() time.Time

	// seeds is shared by every room; each game draws from its own generator.
	mu    sync.Mutex
	seeds *rand.Rand
}

func NewEngine(lex lexicon.Lexicon, rules Rules, rng *rand.Rand, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}

	return &Engine{
		lexicon: lex,
		rules:   rules,
		seeds:   rng,
		now:     now,
	}
}

// Start - deals the racks and picks the first player at random.
func (that *Engine) Start(game *entity.Game, players []*entity.Player) error {
	if game.IsOngoing() {
		return apperror.ErrGameInProgress
	}

	if len(players) != entity.PlayersPerGame {
		return apperror.ErrNotEnoughPlayers
	}

	rng := that.gameRand()

	game.Board = entity.NewBoard()
	game.Bag = entity.NewBag(rng)
	game.Players = players
	game.ConsecutiveSkips = 0
	game.Moves = 0
	game.EndReason = ""
	game.WinnerID = ""
	game.DrawOffer = nil

	for _, player := range players {
		player.Rack = player.Rack[:0]
		player.Score = 0
		player.LastScore = 0
		player.AddTiles(game.Bag.Draw(entity.RackSize))
	}

	game.ActiveIdx = rng.IntN(len(players))
	game.Status = entity.StatusOngoing
	that.startTurn(game)
	that.checkInvariants(game)

	return nil
}

// gameRand - a generator owned by a single game.
func (that *Engine) gameRand() *rand.Rand {
	that.mu.Lock()
	defer that.mu.Unlock()

	return rand.New(rand.NewPCG(that.seeds.Uint64(), that.seeds.Uint64()))
}

// ApplyMove - validates and commits a move. A rejected move leaves the game untouched.
func (that *Engine) ApplyMove(game *entity.Game, playerID string, placements []Placement) (*MoveResult, error) {
	player, err := that.activePlayer(game, playerID)
	if err != nil {
		return nil, err
	}

	words, err := Validate(game.Board, placements, that.lexicon)
	if err != nil {
		return nil, err
	}

	tiles := make([]entity.Tile, 0, len(placements))
	for _, placement := range placements {
		tiles = append(tiles, placement.Tile)
	}

	if !player.HasTiles(tiles) {
		return nil, apperror.ErrTilesNotInRack
	}

	score := Score(game.Board, words, len(placements))

	for _, placement := range placements {
		if err = game.Board.Place(placement.Position, placement.Tile); err != nil {
			panic(fmt.Sprintf("validated placement rejected by board: %v", err))
		}
	}

	if err = player.RemoveTiles(tiles); err != nil {
		panic(fmt.Sprintf("rack changed during move: %v", err))
	}

	drawn := game.Bag.Draw(len(placements))
	player.AddTiles(drawn)
	player.Score += score
	player.LastScore = score

	game.ConsecutiveSkips = 0
	game.Moves++
	game.DrawOffer = nil

	result := &MoveResult{
		PlayerID: playerID,
		Score:    score,
		Bingo:    IsBingo(len(placements)),
		Drawn:    len(drawn),
	}
	for _, word := range words {
		result.Words = append(result.Words, word.Text())
	}

	game.AdvanceTurn()
	that.checkInvariants(game)

	if game.Bag.IsEmpty() && player.IsRackEmpty() {
		game.Finish(entity.EndNormal, game.Leader())
		return result, nil
	}

	that.startTurn(game)

	return result, nil
}

// SkipTurn - passes the turn. Enough consecutive passes end the game.
func (that *Engine) SkipTurn(game *entity.Game, playerID string) error {
	player, err := that.activePlayer(game, playerID)
	if err != nil {
		return err
	}

	that.skip(game, player)

	return nil
}

// TimeoutTurn - treats an expired turn as a pass and returns who lost the turn.
func (that *Engine) TimeoutTurn(game *entity.Game) (string, error) {
	if err := game.ConfirmOngoingState(); err != nil {
		return "", err
	}

	if !that.TurnExpired(game) {
		return "", apperror.ErrTurnNotExpired
	}

	player := game.ActivePlayer()
	that.skip(game, player)

	return player.ID, nil
}

func (that *Engine) TurnExpired(game *entity.Game) bool {
	if !game.IsOngoing() || game.TurnPaused || game.TurnDeadline.IsZero() {
		return false
	}

	return !that.now().Before(game.TurnDeadline)
}

// Resign - ends the game at once, whoever's turn it is.
func (that *Engine) Resign(game *entity.Game, playerID string) error {
	return that.concede(game, playerID, entity.EndResignation)
}

// Forfeit - ends the game because the player left for good.
func (that *Engine) Forfeit(game *entity.Game, playerID string) error {
	return that.concede(game, playerID, entity.EndForfeit)
}

func (that *Engine) OfferDraw(game *entity.Game, playerID string) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if _, ok := game.PlayerByID(playerID); !ok {
		return apperror.ErrNotAPlayer
	}

	that.ExpireDrawOffer(game)
	if game.DrawOffer != nil {
		return apperror.ErrDrawOfferExists
	}

	game.DrawOffer = &entity.DrawOffer{
		PlayerID:  playerID,
		ExpiresAt: that.now().Add(that.rules.DrawOfferTimeout),
	}

	return nil
}

// RespondDraw - the other player accepts or rejects a pending offer.
func (that *Engine) RespondDraw(game *entity.Game, playerID string, accept bool) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if _, ok := game.PlayerByID(playerID); !ok {
		return apperror.ErrNotAPlayer
	}

	if game.DrawOffer == nil {
		return apperror.ErrNoDrawOffer
	}

	if that.ExpireDrawOffer(game) {
		return apperror.ErrDrawOfferExpired
	}

	if game.DrawOffer.PlayerID == playerID {
		return apperror.ErrOwnDrawOffer
	}

	if !accept {
		game.DrawOffer = nil
		return nil
	}

	game.Finish(entity.EndDraw, "")

	return nil
}

// ExpireDrawOffer - drops an offer that outlived its window.
func (that *Engine) ExpireDrawOffer(game *entity.Game) bool {
	if game.DrawOffer == nil || that.now().Before(game.DrawOffer.ExpiresAt) {
		return false
	}

	game.DrawOffer = nil

	return true
}

// PauseTurn - freezes the turn clock, keeping what is left of it.
func (that *Engine) PauseTurn(game *entity.Game) {
	if !game.IsOngoing() || game.TurnPaused {
		return
	}

	remaining := game.TurnDeadline.Sub(that.now())
	if remaining < 0 {
		remaining = 0
	}

	game.TurnPaused = true
	game.TurnRemaining = remaining
	game.TurnDeadline = time.Time{}
}

func (that *Engine) ResumeTurn(game *entity.Game) {
	if !game.IsOngoing() || !game.TurnPaused {
		return
	}

	game.TurnPaused = false
	game.TurnDeadline = that.now().Add(game.TurnRemaining)
	game.TurnRemaining = 0
}

func (that *Engine) skip(game *entity.Game, player *entity.Player) {
	player.LastScore = 0
	game.ConsecutiveSkips++
	game.DrawOffer = nil

	if game.ConsecutiveSkips >= that.rules.MaxConsecutiveSkips {
		game.Finish(entity.EndStalemate, game.Leader())
		return
	}

	game.AdvanceTurn()
	that.startTurn(game)
}

func (that *Engine) concede(game *entity.Game, playerID, reason string) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	opponent, ok := game.Opponent(playerID)
	if _, isPlayer := game.PlayerByID(playerID); !isPlayer || !ok {
		return apperror.ErrNotAPlayer
	}

	game.Finish(reason, opponent.ID)

	return nil
}

// startTurn - arms the clock for the active player. It stays frozen while the
// player is disconnected.
func (that *Engine) startTurn(game *entity.Game) {
	if game.ActivePlayer().Connected {
		game.TurnPaused = false
		game.TurnRemaining = 0
		game.TurnDeadline = that.now().Add(that.rules.TurnTimeout)

		return
	}

	game.TurnPaused = true
	game.TurnRemaining = that.rules.TurnTimeout
	game.TurnDeadline = time.Time{}
}

func (that *Engine) activePlayer(game *entity.Game, playerID string) (*entity.Player, error) {
	if err := game.ConfirmOngoingState(); err != nil {
		return nil, err
	}

	player, ok := game.PlayerByID(playerID)
	if !ok {
		return nil, apperror.ErrNotAPlayer
	}

	if !game.IsActive(playerID) {
		return nil, apperror.ErrNotYourTurn
	}

	return player, nil
}

func (that *Engine) checkInvariants(game *entity.Game) {
	if total := game.TileTotal(); total != entity.TotalTiles {
		panic(fmt.Sprintf("tile count mismatch in game %s: %d", game.ID, total))
	}

	if game.ActiveIdx < 0 || game.ActiveIdx >= len(game.Players) {
		panic(fmt.Sprintf("active player index %d out of range in game %s", game.ActiveIdx, game.ID))
	}
}
