package entity

import "time"

const MaxRoomMembers = 2

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is a lobby slot for up to two players. Members keep their slot while
// they are disconnected and waiting to reconnect.
type Room struct {
	ID      string
	HostID  string
	Members []Member
	Ready   map[string]bool
	Game    *Game
	Started bool
	Closed  bool

	LastActivity time.Time
	EmptySince   time.Time
}

func NewRoom(id string, host Member, now time.Time) *Room {
	return &Room{
		ID:           id,
		HostID:       host.ID,
		Members:      []Member{host},
		Ready:        make(map[string]bool),
		LastActivity: now,
	}
}

func (that *Room) IsMember(userID string) bool {
	for _, member := range that.Members {
		if member.ID == userID {
			return true
		}
	}

	return false
}

func (that *Room) IsFull() bool {
	return len(that.Members) >= MaxRoomMembers
}

func (that *Room) IsEmpty() bool {
	return len(that.Members) == 0
}

// HasOngoingGame - a game is running in the room.
func (that *Room) HasOngoingGame() bool {
	return that.Game != nil && that.Game.IsOngoing()
}

// IsAvailable - the room can be joined from the lobby.
func (that *Room) IsAvailable() bool {
	return !that.Closed && !that.Started && !that.IsFull()
}

func (that *Room) AddMember(member Member, now time.Time) {
	that.Members = append(that.Members, member)
	that.EmptySince = time.Time{}
	that.Touch(now)
}

// RemoveMember - drops the member, hands the host role over and starts the
// empty-room grace period when nobody is left.
func (that *Room) RemoveMember(userID string, now time.Time) bool {
	idx := -1
	for i, member := range that.Members {
		if member.ID == userID {
			idx = i
			break
		}
	}

	if idx < 0 {
		return false
	}

	that.Members = append(that.Members[:idx], that.Members[idx+1:]...)
	delete(that.Ready, userID)

	if that.HostID == userID {
		that.HostID = ""
		if len(that.Members) > 0 {
			that.HostID = that.Members[0].ID
			delete(that.Ready, that.HostID)
		}
	}

	if that.IsEmpty() {
		that.EmptySince = now
	}

	that.Touch(now)

	return true
}

// Guest - the member that is not the host.
func (that *Room) Guest() (Member, bool) {
	for _, member := range that.Members {
		if member.ID != that.HostID {
			return member, true
		}
	}

	return Member{}, false
}

func (that *Room) Touch(now time.Time) {
	that.LastActivity = now
}

func (that *Room) Info() RoomInfo {
	members := make([]Member, len(that.Members))
	copy(members, that.Members)

	return RoomInfo{
		ID:      that.ID,
		HostID:  that.HostID,
		Members: members,
		Started: that.Started,
		Full:    that.IsFull(),
	}
}

// State - the room as seen by the given member.
func (that *Room) State(viewerID string) RoomState {
	ready := make(map[string]bool, len(that.Ready))
	for id, isReady := range that.Ready {
		ready[id] = isReady
	}

	state := RoomState{
		Room:  that.Info(),
		Ready: ready,
	}

	if that.Game != nil && !that.Game.IsWaiting() {
		snapshot := that.Game.Snapshot(viewerID)
		state.Game = &snapshot
	}

	return state
}

type RoomInfo struct {
	ID      string   `json:"id"`
	HostID  string   `json:"host_id"`
	Members []Member `json:"members"`
	Started bool     `json:"started"`
	Full    bool     `json:"full"`
}

type RoomState struct {
	Room  RoomInfo        `json:"room"`
	Ready map[string]bool `json:"ready"`
	Game  *GameSnapshot   `json:"game,omitempty"`
}
