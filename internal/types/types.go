// Package types defines the JSON wire protocol shared by the websocket layer
// and the hub. Every frame in either direction is an Envelope:
//
//	{"event": "crash_tick", "data": {"multiplier": 1.42}}
//
// Field names below are the compatibility boundary with the browser client —
// do not rename them.
package types

import "encoding/json"

// Inbound event names (client -> server).
const (
	EvtCrashPlaceBet      = "crash_place_bet"
	EvtCrashCashout       = "crash_cashout"
	EvtCaseGetLobbies     = "case_get_lobbies"
	EvtCaseCreateLobby    = "case_create_lobby"
	EvtCaseCancelLobby    = "case_cancel_lobby"
	EvtCaseJoinLobby      = "case_join_lobby"
	EvtCaseBotJoin        = "case_bot_join"
	EvtAdminCommand       = "admin_command"
	EvtDonationSent       = "donation_sent"
	EvtGlobalAnnouncement = "global_announcement"
	EvtSendChat           = "send_chat"
)

// Outbound event names (server -> client).
const (
	EvtCrashState       = "crash_state"
	EvtCrashTimer       = "crash_timer"
	EvtCrashTick        = "crash_tick"
	EvtCrashEnd         = "crash_end"
	EvtCrashLiveBet     = "crash_live_bet"
	EvtCrashLiveCashout = "crash_live_cashout"
	EvtLobbyList        = "case_lobby_list"
	EvtLobbyCreated     = "case_lobby_created"
	EvtLobbyRemoved     = "case_lobby_removed"
	EvtBattleStart      = "case_battle_start"
	EvtModeChange       = "server_mode_change"
	EvtMultiplierChange = "global_multiplier_change"
	EvtChatHistory      = "chat_history"
	EvtNewChatMessage   = "new_chat_message"
	EvtDonationReceived = "donation_received"
	EvtGiftNotification = "gift_notification"
	EvtRainEvent        = "rain_event"
)

// Admin sub-commands carried inside an admin_command frame.
const (
	AdminClearChat     = "clear_chat"
	AdminToggleMute    = "toggle_mute"
	AdminSetSlowMode   = "set_slow_mode"
	AdminBanUser       = "ban_user"
	AdminUnbanUser     = "unban_user"
	AdminSetMode       = "set_mode"
	AdminSetMultiplier = "set_multiplier"
	AdminForceCrash    = "force_crash"
	AdminRainCoins     = "rain_coins"
	AdminGiftCoins     = "gift_coins"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an outbound frame. Payload types are all defined in this
// package, so a marshal failure is a programming error; it degrades to a
// null data field instead of threading an error through every broadcast.
func Encode(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	out, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return out
}

// --- inbound payloads ---

type CreateLobbyPayload struct {
	CreatorID   string  `json:"creatorId"`
	CreatorName string  `json:"creatorName"`
	CreatorRank string  `json:"creatorRank,omitempty"`
	CaseID      string  `json:"caseId"`
	Cost        float64 `json:"cost"`
}

type CancelLobbyPayload struct {
	LobbyID string `json:"lobbyId"`
}

type JoinLobbyPayload struct {
	LobbyID    string `json:"lobbyId"`
	JoinerID   string `json:"joinerId"`
	JoinerName string `json:"joinerName"`
	JoinerRank string `json:"joinerRank,omitempty"`
}

type BotJoinPayload struct {
	LobbyID string `json:"lobbyId"`
}

// AdminCommandPayload is the loose admin frame as it arrives. The ws layer
// resolves it into one typed hub message per command before anything reaches
// the core.
type AdminCommandPayload struct {
	Command  string          `json:"command"`
	Seconds  int             `json:"seconds,omitempty"`
	Username string          `json:"username,omitempty"`
	Mode     string          `json:"mode,omitempty"`
	Value    float64         `json:"value,omitempty"`
	Target   *float64        `json:"target,omitempty"`
	Extra    json.RawMessage `json:"extra,omitempty"`
}

type SendChatPayload struct {
	ID           string `json:"id,omitempty"`
	Author       string `json:"author"`
	Text         string `json:"text"`
	IsOwner      bool   `json:"isOwner"`
	EquippedRank string `json:"equippedRank,omitempty"`
}

type AnnouncementPayload struct {
	Text string `json:"text"`
}

type DonationPayload struct {
	FromUsername string  `json:"fromUsername"`
	ToUsername   string  `json:"toUsername"`
	ToUserID     string  `json:"toUserId"`
	Amount       float64 `json:"amount"`
}

// --- outbound payloads ---

type CrashStatePayload struct {
	State      string  `json:"state"`
	Timer      *int    `json:"timer,omitempty"`
	Multiplier float64 `json:"multiplier"`
}

type CrashTimerPayload struct {
	Timer int `json:"timer"`
}

type CrashTickPayload struct {
	Multiplier float64 `json:"multiplier"`
}

type CrashEndPayload struct {
	Multiplier float64 `json:"multiplier"`
}

type LobbyPayload struct {
	LobbyID     string  `json:"lobbyId"`
	CreatorID   string  `json:"creatorId"`
	CreatorName string  `json:"creatorName"`
	CreatorRank string  `json:"creatorRank,omitempty"`
	CaseID      string  `json:"caseId"`
	Cost        float64 `json:"cost"`
}

type LobbyRemovedPayload struct {
	LobbyID string `json:"lobbyId"`
}

type BattleStartPayload struct {
	LobbyID     string `json:"lobbyId"`
	CaseID      string `json:"caseId"`
	Player1ID   string `json:"player1Id"`
	Player1Name string `json:"player1Name"`
	Player1Tag  string `json:"player1TagId"`
	Player1Rank string `json:"player1Rank,omitempty"`
	Player2ID   string `json:"player2Id"`
	Player2Name string `json:"player2Name"`
	Player2Tag  string `json:"player2TagId"`
	Player2Rank string `json:"player2Rank,omitempty"`
	WinnerID    string `json:"winnerId"`
}

type ModeChangePayload struct {
	Mode string `json:"mode"`
}

type MultiplierChangePayload struct {
	Value float64 `json:"value"`
}
