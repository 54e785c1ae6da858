package ws

import (
	"encoding/json"
	"testing"

	"github.com/astrarise/astrarise-backend/internal/hub"
	"github.com/astrarise/astrarise-backend/internal/types"
)

func env(event, data string) types.Envelope {
	return types.Envelope{Event: event, Data: json.RawMessage(data)}
}

func TestToIntent_MapsLobbyEvents(t *testing.T) {
	msg, ok := toIntent("c1", env(types.EvtCaseCreateLobby,
		`{"creatorId":"u1","creatorName":"Alice","creatorRank":"gold","caseId":"pro","cost":500}`))
	if !ok {
		t.Fatalf("create lobby not mapped")
	}
	create, ok := msg.(hub.CreateLobby)
	if !ok {
		t.Fatalf("wrong message type %T", msg)
	}
	if create.ConnID != "c1" || create.CreatorID != "u1" || create.TierID != "pro" || create.Cost != 500 {
		t.Fatalf("payload lost in mapping: %+v", create)
	}

	msg, ok = toIntent("c1", env(types.EvtCaseJoinLobby,
		`{"lobbyId":"L1","joinerId":"u2","joinerName":"Bob"}`))
	if !ok {
		t.Fatalf("join lobby not mapped")
	}
	join := msg.(hub.JoinLobby)
	if join.LobbyID != "L1" || join.JoinerID != "u2" {
		t.Fatalf("join payload: %+v", join)
	}

	msg, ok = toIntent("c1", env(types.EvtCaseBotJoin, `{"lobbyId":"L1"}`))
	if !ok {
		t.Fatalf("bot join not mapped")
	}
	if bot := msg.(hub.BotJoin); bot.LobbyID != "L1" {
		t.Fatalf("bot join payload: %+v", bot)
	}
}

func TestToIntent_AdminCommandsResolveToTypedMessages(t *testing.T) {
	cases := []struct {
		name string
		data string
		want any
	}{
		{name: "clear chat", data: `{"command":"clear_chat"}`, want: hub.ClearChat{}},
		{name: "toggle mute", data: `{"command":"toggle_mute"}`, want: hub.ToggleMute{}},
		{name: "slow mode", data: `{"command":"set_slow_mode","seconds":30}`, want: hub.SetSlowMode{Seconds: 30}},
		{name: "ban", data: `{"command":"ban_user","username":"troll"}`, want: hub.BanUser{Username: "troll"}},
		{name: "unban", data: `{"command":"unban_user","username":"troll"}`, want: hub.UnbanUser{Username: "troll"}},
		{name: "mode", data: `{"command":"set_mode","mode":"frenzy"}`, want: hub.SetMode{Mode: "frenzy"}},
		{name: "multiplier", data: `{"command":"set_multiplier","value":2}`, want: hub.SetMultiplier{Value: 2}},
		{name: "rain", data: `{"command":"rain_coins","value":1000}`, want: hub.RainCoins{Amount: 1000}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, ok := toIntent("c1", env(types.EvtAdminCommand, tc.data))
			if !ok {
				t.Fatalf("admin command not mapped")
			}
			if msg != tc.want {
				t.Fatalf("got %#v, want %#v", msg, tc.want)
			}
		})
	}
}

func TestToIntent_ForceCrashCarriesTarget(t *testing.T) {
	msg, ok := toIntent("c1", env(types.EvtAdminCommand, `{"command":"force_crash","target":3.5}`))
	if !ok {
		t.Fatalf("force crash not mapped")
	}
	fc := msg.(hub.ForceCrashTarget)
	if fc.Target == nil || *fc.Target != 3.5 {
		t.Fatalf("target lost: %+v", fc)
	}

	msg, _ = toIntent("c1", env(types.EvtAdminCommand, `{"command":"force_crash"}`))
	if fc := msg.(hub.ForceCrashTarget); fc.Target != nil {
		t.Fatalf("absent target should map to nil (clear override)")
	}
}

func TestToIntent_RejectsUnknownAndMalformed(t *testing.T) {
	if _, ok := toIntent("c1", env("no_such_event", `{}`)); ok {
		t.Fatalf("unknown event accepted")
	}
	if _, ok := toIntent("c1", env(types.EvtCaseJoinLobby, `not json`)); ok {
		t.Fatalf("malformed payload accepted")
	}
	if _, ok := toIntent("c1", env(types.EvtAdminCommand, `{"command":"reboot_universe"}`)); ok {
		t.Fatalf("unknown admin command accepted")
	}
}

func TestToIntent_RelaysKeepRawPayload(t *testing.T) {
	msg, ok := toIntent("c1", env(types.EvtCrashPlaceBet, `{"user":"alice","amount":50}`))
	if !ok {
		t.Fatalf("place bet not mapped")
	}
	bet := msg.(hub.RelayBet)
	if bet.ConnID != "c1" || string(bet.Data) != `{"user":"alice","amount":50}` {
		t.Fatalf("relay payload altered: %+v", bet)
	}
}
