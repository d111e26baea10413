package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

func letters(word string) []entity.Tile {
	tiles := make([]entity.Tile, 0, len(word))
	for _, r := range word {
		tiles = append(tiles, entity.LetterTile(r))
	}

	return tiles
}

func catAtCenter() []scrabble.Placement {
	return []scrabble.Placement{
		{Position: entity.Position{X: 6, Y: 7}, Tile: entity.LetterTile('C')},
		{Position: entity.Position{X: 7, Y: 7}, Tile: entity.LetterTile('A')},
		{Position: entity.Position{X: 8, Y: 7}, Tile: entity.LetterTile('T')},
	}
}

func (that *testEnv) expectResult(userID string, outcome entity.Outcome) {
	that.recorder.On("RecordResult", mock.Anything, userID, outcome).Return(nil).Once()
}

func TestGameManager_StartGame(t *testing.T) {
	t.Run("Host starts with a ready guest", func(t *testing.T) {
		// Given: alice hosts, bob joined and is ready
		env := newTestEnv(t)

		// When: alice starts the game
		env.startGame(t)

		// Then: both players see the game with only their own rack
		for _, id := range []string{alice.ID, bob.ID} {
			assert.Equal(t, EventGameStarted, env.notifier.lastEvent(id).Type)

			states := env.notifier.ofKind(id, KindState)
			game := states[len(states)-1].State.Game
			require.NotNil(t, game)
			assert.Equal(t, entity.TotalTiles-2*entity.RackSize, game.BagRemaining)

			for _, player := range game.Players {
				assert.Equal(t, entity.RackSize, player.RackSize)
				if player.ID == id {
					assert.Len(t, player.Rack, entity.RackSize)
				} else {
					assert.Empty(t, player.Rack)
				}
			}
		}

		assert.Empty(t, env.manager.ListAvailableRooms())
	})

	t.Run("Only the host can start", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.manager.CreateRoom(env.ctx, alice, "R1")
		require.NoError(t, err)
		require.NoError(t, env.manager.JoinRoom(env.ctx, bob, "R1"))
		require.NoError(t, env.manager.SetReady(env.ctx, bob.ID, true))

		assert.ErrorIs(t, env.manager.StartGame(env.ctx, bob.ID), apperror.ErrNotHost)
	})

	t.Run("The guest has to be ready", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.manager.CreateRoom(env.ctx, alice, "R1")
		require.NoError(t, err)
		require.NoError(t, env.manager.JoinRoom(env.ctx, bob, "R1"))

		assert.ErrorIs(t, env.manager.StartGame(env.ctx, alice.ID), apperror.ErrPlayersNotReady)
	})

	t.Run("Two players are needed", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.manager.CreateRoom(env.ctx, alice, "R1")
		require.NoError(t, err)

		assert.ErrorIs(t, env.manager.StartGame(env.ctx, alice.ID), apperror.ErrNotEnoughPlayers)
	})

	t.Run("Cannot start a running game", func(t *testing.T) {
		env := newTestEnv(t)
		env.startGame(t)

		assert.ErrorIs(t, env.manager.StartGame(env.ctx, alice.ID), apperror.ErrGameInProgress)
	})
}

func TestGameManager_MakeMove(t *testing.T) {
	t.Run("A valid move is committed and broadcast", func(t *testing.T) {
		// Given: a running game where the active player holds C, A, T
		env := newTestEnv(t)
		env.startGame(t)
		active, waiting := env.players(t)
		env.inRoom(t, "R1", func(room *entity.Room) {
			player, _ := room.Game.PlayerByID(active)
			player.Rack = letters("CATEEEE")
		})

		// When: the active player lays CAT through the center
		result, err := env.manager.MakeMove(env.ctx, active, catAtCenter())

		// Then: the move scores, both players are told and the turn passes
		require.NoError(t, err)
		assert.Equal(t, []string{"CAT"}, result.Words)
		assert.Equal(t, 10, result.Score)

		for _, id := range []string{active, waiting} {
			event := env.notifier.lastEvent(id)
			assert.Equal(t, EventMove, event.Type)
			assert.Equal(t, active, event.PlayerID)
			assert.Equal(t, 10, event.Score)
		}

		next, _ := env.players(t)
		assert.Equal(t, waiting, next)
	})

	t.Run("A move out of turn is only reported to the mover", func(t *testing.T) {
		// Given: a running game
		env := newTestEnv(t)
		env.startGame(t)
		active, waiting := env.players(t)
		before := env.notifier.count(active)

		// When: the waiting player tries to move
		_, err := env.manager.MakeMove(env.ctx, waiting, catAtCenter())

		// Then: the move is rejected and nobody else hears about it
		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, before, env.notifier.count(active))
	})

	t.Run("Outsiders cannot move", func(t *testing.T) {
		env := newTestEnv(t)
		env.startGame(t)

		_, err := env.manager.MakeMove(env.ctx, carol.ID, catAtCenter())

		assert.ErrorIs(t, err, apperror.ErrNotRoomMember)
	})

	t.Run("No game yet", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.manager.CreateRoom(env.ctx, alice, "R1")
		require.NoError(t, err)

		_, err = env.manager.MakeMove(env.ctx, alice.ID, catAtCenter())

		assert.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})
}

func TestGameManager_SkipTurn(t *testing.T) {
	t.Run("Skips pass the turn until the game stalls", func(t *testing.T) {
		// Given: a running game
		env := newTestEnv(t)
		env.startGame(t)
		active, waiting := env.players(t)
		env.expectResult(active, entity.OutcomeDraw)
		env.expectResult(waiting, entity.OutcomeDraw)

		// When: four turns in a row are skipped
		require.NoError(t, env.manager.SkipTurn(env.ctx, active))
		assert.Equal(t, EventSkip, env.notifier.lastEvent(waiting).Type)
		require.NoError(t, env.manager.SkipTurn(env.ctx, waiting))
		require.NoError(t, env.manager.SkipTurn(env.ctx, active))
		require.NoError(t, env.manager.SkipTurn(env.ctx, waiting))

		// Then: the game ends in a stalemate with equal scores
		event := env.notifier.lastEvent(active)
		assert.Equal(t, EventGameOver, event.Type)
		assert.Equal(t, entity.EndStalemate, event.Reason)
		assert.Empty(t, event.WinnerID)
		env.recorder.AssertExpectations(t)

		assert.ErrorIs(t, env.manager.SkipTurn(env.ctx, active), apperror.ErrGameFinished)
	})
}

func TestGameManager_Resign(t *testing.T) {
	// Given: a running game
	env := newTestEnv(t)
	env.startGame(t)
	env.expectResult(alice.ID, entity.OutcomeLoss)
	env.expectResult(bob.ID, entity.OutcomeWin)

	// When: alice resigns, whoever's turn it is
	err := env.manager.Resign(env.ctx, alice.ID)

	// Then: bob wins and results are stored
	require.NoError(t, err)
	event := env.notifier.lastEvent(bob.ID)
	assert.Equal(t, EventGameOver, event.Type)
	assert.Equal(t, entity.EndResignation, event.Reason)
	assert.Equal(t, bob.ID, event.WinnerID)
	env.recorder.AssertExpectations(t)

	t.Run("The room can start a new game after readying again", func(t *testing.T) {
		assert.ErrorIs(t, env.manager.StartGame(env.ctx, alice.ID), apperror.ErrPlayersNotReady)

		require.NoError(t, env.manager.SetReady(env.ctx, bob.ID, true))
		require.NoError(t, env.manager.StartGame(env.ctx, alice.ID))
	})
}

func TestGameManager_Draw(t *testing.T) {
	t.Run("An accepted offer ends the game as a draw", func(t *testing.T) {
		// Given: alice offered a draw
		env := newTestEnv(t)
		env.startGame(t)
		require.NoError(t, env.manager.OfferDraw(env.ctx, alice.ID))
		assert.Equal(t, EventDrawOffered, env.notifier.lastEvent(bob.ID).Type)
		env.expectResult(alice.ID, entity.OutcomeDraw)
		env.expectResult(bob.ID, entity.OutcomeDraw)

		// When: bob accepts
		err := env.manager.RespondDraw(env.ctx, bob.ID, true)

		// Then: nobody wins
		require.NoError(t, err)
		event := env.notifier.lastEvent(alice.ID)
		assert.Equal(t, EventGameOver, event.Type)
		assert.Equal(t, entity.EndDraw, event.Reason)
		env.recorder.AssertExpectations(t)
	})

	t.Run("A rejected offer changes nothing else", func(t *testing.T) {
		env := newTestEnv(t)
		env.startGame(t)
		require.NoError(t, env.manager.OfferDraw(env.ctx, alice.ID))

		require.NoError(t, env.manager.RespondDraw(env.ctx, bob.ID, false))

		assert.Equal(t, EventDrawRejected, env.notifier.lastEvent(alice.ID).Type)
		assert.ErrorIs(t, env.manager.RespondDraw(env.ctx, bob.ID, true), apperror.ErrNoDrawOffer)
	})

	t.Run("An offer runs out after its window", func(t *testing.T) {
		env := newTestEnv(t)
		env.startGame(t)
		require.NoError(t, env.manager.OfferDraw(env.ctx, alice.ID))

		env.clock.Advance(scrabble.DefaultDrawOfferTimeout)
		err := env.manager.RespondDraw(env.ctx, bob.ID, true)

		assert.ErrorIs(t, err, apperror.ErrDrawOfferExpired)
		assert.Equal(t, EventDrawExpired, env.notifier.lastEvent(alice.ID).Type)
	})

	t.Run("The offering player cannot accept", func(t *testing.T) {
		env := newTestEnv(t)
		env.startGame(t)
		require.NoError(t, env.manager.OfferDraw(env.ctx, alice.ID))

		assert.ErrorIs(t, env.manager.RespondDraw(env.ctx, alice.ID, true), apperror.ErrOwnDrawOffer)
	})
}

func TestGameManager_ClaimTimeout(t *testing.T) {
	// Given: a running game
	env := newTestEnv(t)
	env.startGame(t)
	active, waiting := env.players(t)

	t.Run("Too early", func(t *testing.T) {
		assert.ErrorIs(t, env.manager.ClaimTimeout(env.ctx, waiting), apperror.ErrTurnNotExpired)
	})

	t.Run("The turn passes once the clock ran out", func(t *testing.T) {
		// When: the turn budget is used up
		env.clock.Advance(scrabble.DefaultTurnTimeout)
		err := env.manager.ClaimTimeout(env.ctx, waiting)

		// Then: the active player loses the turn
		require.NoError(t, err)
		event := env.notifier.lastEvent(waiting)
		assert.Equal(t, EventTimeout, event.Type)
		assert.Equal(t, active, event.PlayerID)

		next, _ := env.players(t)
		assert.Equal(t, waiting, next)
	})
}

func TestGameManager_PreviewTiles(t *testing.T) {
	// Given: a running game
	env := newTestEnv(t)
	env.startGame(t)
	aliceBefore := env.notifier.count(alice.ID)

	// When: alice previews tiles
	err := env.manager.PreviewTiles(env.ctx, alice.ID, catAtCenter())

	// Then: only bob sees them and the board is untouched
	require.NoError(t, err)
	previews := env.notifier.ofKind(bob.ID, KindPreview)
	require.Len(t, previews, 1)
	assert.Equal(t, alice.ID, previews[0].SenderID)
	assert.Equal(t, catAtCenter(), previews[0].Preview)
	assert.Equal(t, aliceBefore, env.notifier.count(alice.ID))

	env.inRoom(t, "R1", func(room *entity.Room) {
		assert.True(t, room.Game.Board.IsEmpty())
	})
}

func TestGameManager_LeaveRoom(t *testing.T) {
	t.Run("Leaving a running game forfeits it", func(t *testing.T) {
		// Given: a running game
		env := newTestEnv(t)
		env.startGame(t)
		env.expectResult(alice.ID, entity.OutcomeLoss)
		env.expectResult(bob.ID, entity.OutcomeWin)

		// When: alice leaves
		err := env.manager.LeaveRoom(env.ctx, alice.ID)

		// Then: bob wins, hosts the room and sees it listed again
		require.NoError(t, err)
		events := env.notifier.events(bob.ID)
		assert.Equal(t, []string{EventGameOver, EventPlayerLeft}, events[len(events)-2:])
		env.recorder.AssertExpectations(t)

		rooms := env.manager.ListAvailableRooms()
		require.Len(t, rooms, 1)
		assert.Equal(t, bob.ID, rooms[0].HostID)
	})

	t.Run("Not in a room", func(t *testing.T) {
		env := newTestEnv(t)

		assert.ErrorIs(t, env.manager.LeaveRoom(env.ctx, alice.ID), apperror.ErrNotRoomMember)
	})
}

func TestGameManager_State(t *testing.T) {
	env := newTestEnv(t)
	env.startGame(t)

	state, err := env.manager.State(env.ctx, bob.ID)

	require.NoError(t, err)
	assert.Equal(t, "R1", state.Room.ID)
	require.NotNil(t, state.Game)
	assert.Len(t, state.Game.Players, entity.PlayersPerGame)
}
