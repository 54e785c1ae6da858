package hub

import (
	"encoding/json"

	"github.com/astrarise/astrarise-backend/internal/battle"
)

// Msg is anything the hub goroutine can dispatch. Everything that mutates
// shared state arrives as one of these, which is the whole single-writer
// guarantee: one goroutine, one inbox, no other mutation path.
type Msg interface{ isHubMsg() }

// Connect registers a client and replays current state to its outbox.
type Connect struct {
	ConnID string
	Outbox chan []byte
}

// Disconnect unregisters a client and retires any lobbies it created.
type Disconnect struct{ ConnID string }

// ForceCrashTarget stages an admin override for the next round's target.
// A nil Target clears a previously staged override.
type ForceCrashTarget struct{ Target *float64 }

type CreateLobby struct {
	ConnID      string
	CreatorID   string
	CreatorName string
	CreatorRank string
	TierID      string
	Cost        float64
}

type CancelLobby struct{ LobbyID string }

type JoinLobby struct {
	ConnID     string
	LobbyID    string
	JoinerID   string
	JoinerName string
	JoinerRank string
}

type BotJoin struct {
	ConnID  string
	LobbyID string
}

// GetLobbies replies to the sender's outbox with the current lobby snapshot.
type GetLobbies struct{ ConnID string }

// RelayBet and RelayCashout re-broadcast client wagers verbatim to everyone
// else; the server neither validates nor records them.
type RelayBet struct {
	ConnID string
	Data   json.RawMessage
}

type RelayCashout struct {
	ConnID string
	Data   json.RawMessage
}

type Donation struct {
	FromUsername string
	ToUsername   string
	ToUserID     string
	Amount       float64
}

type SendChat struct {
	ID           string
	Author       string
	Text         string
	IsOwner      bool
	EquippedRank string
}

type Announcement struct{ Text string }

// Admin moderation commands, one type per command so the core never sees the
// loose stringly-typed frame.
type ClearChat struct{}
type ToggleMute struct{}
type SetSlowMode struct{ Seconds int }
type BanUser struct{ Username string }
type UnbanUser struct{ Username string }
type SetMode struct{ Mode string }
type SetMultiplier struct{ Value float64 }
type RainCoins struct{ Amount float64 }
type GiftCoins struct{ Data json.RawMessage }

type Shutdown struct{}

// Inspect reflects internal state without data races; test-only.
type Inspect struct{ Reply chan View }

type View struct {
	Phase            string
	Multiplier       float64
	Target           float64
	Countdown        int
	NumClients       int
	Lobbies          []battle.Lobby
	Mode             string
	GlobalMultiplier float64
	ChatMessages     int
	Muted            bool
}

// Timer fires are messages too, stamped with the generation of the phase
// that armed them so a stale ticker can never double-drive the round.
type waitTick struct{ gen uint64 }
type runTick struct{ gen uint64 }
type roundRestart struct{ gen uint64 }

func (Connect) isHubMsg()          {}
func (Disconnect) isHubMsg()       {}
func (ForceCrashTarget) isHubMsg() {}
func (CreateLobby) isHubMsg()      {}
func (CancelLobby) isHubMsg()      {}
func (JoinLobby) isHubMsg()        {}
func (BotJoin) isHubMsg()          {}
func (GetLobbies) isHubMsg()       {}
func (RelayBet) isHubMsg()         {}
func (RelayCashout) isHubMsg()     {}
func (Donation) isHubMsg()         {}
func (SendChat) isHubMsg()         {}
func (Announcement) isHubMsg()     {}
func (ClearChat) isHubMsg()        {}
func (ToggleMute) isHubMsg()       {}
func (SetSlowMode) isHubMsg()      {}
func (BanUser) isHubMsg()          {}
func (UnbanUser) isHubMsg()        {}
func (SetMode) isHubMsg()          {}
func (SetMultiplier) isHubMsg()    {}
func (RainCoins) isHubMsg()        {}
func (GiftCoins) isHubMsg()        {}
func (Shutdown) isHubMsg()         {}
func (Inspect) isHubMsg()          {}
func (waitTick) isHubMsg()         {}
func (runTick) isHubMsg()          {}
func (roundRestart) isHubMsg()     {}
