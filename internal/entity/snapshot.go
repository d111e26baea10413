package entity

import "time"

type CellView struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Letter string `json:"letter"`
	Blank  bool   `json:"blank,omitempty"`
}

type PlayerView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Score     int      `json:"score"`
	LastScore int      `json:"last_score"`
	RackSize  int      `json:"rack_size"`
	Rack      []string `json:"rack,omitempty"`
	Connected bool     `json:"connected"`
}

type GameSnapshot struct {
	ID               string       `json:"id"`
	Status           string       `json:"status"`
	EndReason        string       `json:"end_reason,omitempty"`
	WinnerID         string       `json:"winner_id,omitempty"`
	ActivePlayerID   string       `json:"active_player_id,omitempty"`
	BagRemaining     int          `json:"bag_remaining"`
	ConsecutiveSkips int          `json:"consecutive_skips"`
	Board            []CellView   `json:"board"`
	Players          []PlayerView `json:"players"`
	DrawOffer        *DrawOffer   `json:"draw_offer,omitempty"`
	TurnDeadline     *time.Time   `json:"turn_deadline,omitempty"`
	TurnPaused       bool         `json:"turn_paused,omitempty"`
}

// Snapshot - a copy of the game safe to send to viewerID. Only the viewer's own
// rack letters are included.
func (that *Game) Snapshot(viewerID string) GameSnapshot {
	snapshot := GameSnapshot{
		ID:               that.ID,
		Status:           that.Status,
		EndReason:        that.EndReason,
		WinnerID:         that.WinnerID,
		ConsecutiveSkips: that.ConsecutiveSkips,
		TurnPaused:       that.TurnPaused,
	}

	if that.IsOngoing() {
		if active := that.ActivePlayer(); active != nil {
			snapshot.ActivePlayerID = active.ID
		}
	}

	if that.Bag != nil {
		snapshot.BagRemaining = that.Bag.Len()
	}

	for _, placed := range that.Board.Tiles() {
		snapshot.Board = append(snapshot.Board, CellView{
			X:      placed.X,
			Y:      placed.Y,
			Letter: placed.Tile.String(),
			Blank:  placed.Blank,
		})
	}

	for _, player := range that.Players {
		view := PlayerView{
			ID:        player.ID,
			Name:      player.Name,
			Score:     player.Score,
			LastScore: player.LastScore,
			RackSize:  len(player.Rack),
			Connected: player.Connected,
		}

		if player.ID == viewerID {
			view.Rack = make([]string, 0, len(player.Rack))
			for _, tile := range player.Rack {
				view.Rack = append(view.Rack, tile.String())
			}
		}

		snapshot.Players = append(snapshot.Players, view)
	}

	if that.DrawOffer != nil {
		offer := *that.DrawOffer
		snapshot.DrawOffer = &offer
	}

	if !that.TurnDeadline.IsZero() {
		deadline := that.TurnDeadline
		snapshot.TurnDeadline = &deadline
	}

	return snapshot
}
