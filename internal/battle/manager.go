package battle

import (
	"time"

	"github.com/google/uuid"

	"github.com/astrarise/astrarise-backend/internal/catalog"
)

// Bot identity used when a creator plays the house instead of a real joiner.
const (
	BotID   = "bot"
	BotName = "AstraBot"
)

// Lobby is an open invitation to a case battle, waiting for a second player.
type Lobby struct {
	ID          string
	CreatorID   string
	CreatorName string
	CreatorRank string
	TierID      string
	Cost        float64
	OriginConn  string
	CreatedAt   time.Time
}

// Result is the outcome of a resolved battle. It is broadcast once and never
// stored.
type Result struct {
	LobbyID     string
	TierID      string
	Player1ID   string
	Player1Name string
	Player1Rank string
	Player1Tag  string
	Player2ID   string
	Player2Name string
	Player2Rank string
	Player2Tag  string
	WinnerID    string
}

// Manager owns the open-lobby collection. It is only ever called from the
// hub goroutine, which is what makes join/bot-join consumption exactly-once:
// the lookup, the draws and the removal happen inside one message dispatch.
type Manager struct {
	cat   *catalog.Catalog
	order []string
	byID  map[string]*Lobby
	newID func() string
}

func NewManager(cat *catalog.Catalog) *Manager {
	return &Manager{
		cat:   cat,
		byID:  make(map[string]*Lobby),
		newID: uuid.NewString,
	}
}

func (m *Manager) Create(creatorID, creatorName, creatorRank, tierID string, cost float64, originConn string) *Lobby {
	lb := &Lobby{
		ID:          m.newID(),
		CreatorID:   creatorID,
		CreatorName: creatorName,
		CreatorRank: creatorRank,
		TierID:      tierID,
		Cost:        cost,
		OriginConn:  originConn,
		CreatedAt:   time.Now(),
	}
	m.order = append(m.order, lb.ID)
	m.byID[lb.ID] = lb
	return lb
}

// Has reports whether a lobby is still open.
func (m *Manager) Has(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// Cancel removes a lobby if it still exists. Cancelling an unknown id is a
// no-op so stale client buttons cannot error.
func (m *Manager) Cancel(id string) bool {
	if _, ok := m.byID[id]; !ok {
		return false
	}
	m.remove(id)
	return true
}

// Join consumes the lobby and resolves the battle. It reports false when the
// lobby is gone or the joiner is the creator; in both cases nothing changes.
func (m *Manager) Join(lobbyID, joinerID, joinerName, joinerRank string) (Result, bool) {
	lb, ok := m.byID[lobbyID]
	if !ok {
		return Result{}, false
	}
	if joinerID == lb.CreatorID {
		return Result{}, false
	}

	res := m.resolve(lb, joinerID, joinerName, joinerRank)
	m.remove(lobbyID)
	return res, true
}

// BotJoin is Join with the fixed bot identity standing in for player 2.
func (m *Manager) BotJoin(lobbyID string) (Result, bool) {
	lb, ok := m.byID[lobbyID]
	if !ok {
		return Result{}, false
	}
	res := m.resolve(lb, BotID, BotName, "")
	m.remove(lobbyID)
	return res, true
}

// DropConnection removes every lobby created over the given connection and
// returns their ids in insertion order so each removal can be announced.
func (m *Manager) DropConnection(connID string) []string {
	var removed []string
	for _, id := range m.order {
		if lb := m.byID[id]; lb != nil && lb.OriginConn == connID {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		m.remove(id)
	}
	return removed
}

// List snapshots the open lobbies in insertion order.
func (m *Manager) List() []Lobby {
	out := make([]Lobby, 0, len(m.order))
	for _, id := range m.order {
		if lb := m.byID[id]; lb != nil {
			out = append(out, *lb)
		}
	}
	return out
}

func (m *Manager) resolve(lb *Lobby, joinerID, joinerName, joinerRank string) Result {
	var tagIDs []string
	if tier, ok := m.cat.Tier(lb.TierID); ok {
		tagIDs = tier.TagIDs
	}
	// One independent draw per side. An unknown tier leaves tagIDs empty and
	// the catalog's deterministic fallback kicks in.
	t1 := m.cat.Draw(tagIDs)
	t2 := m.cat.Draw(tagIDs)

	winner := joinerID
	if t1.Value >= t2.Value {
		winner = lb.CreatorID
	}
	return Result{
		LobbyID:     lb.ID,
		TierID:      lb.TierID,
		Player1ID:   lb.CreatorID,
		Player1Name: lb.CreatorName,
		Player1Rank: lb.CreatorRank,
		Player1Tag:  t1.ID,
		Player2ID:   joinerID,
		Player2Name: joinerName,
		Player2Rank: joinerRank,
		Player2Tag:  t2.ID,
		WinnerID:    winner,
	}
}

func (m *Manager) remove(id string) {
	delete(m.byID, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
