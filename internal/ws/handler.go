package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/astrarise/astrarise-backend/internal/hub"
	"github.com/astrarise/astrarise-backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection, registers it with the hub, and pumps
// frames both ways. The reader translates wire frames into typed hub
// messages at this boundary; nothing stringly-typed crosses into the core.
func Handler(h *hub.Hub, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := make(chan []byte, 64)

		h.Inbox() <- hub.Connect{ConnID: connID, Outbox: out}
		defer func() { h.Inbox() <- hub.Disconnect{ConnID: connID} }()

		// Writer goroutine: drains frames the hub already serialized. The
		// hub closes the channel when it drops or disconnects us.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for frame := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, frame)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var env types.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				log.Debug("discarding malformed frame", zap.String("conn", connID))
				continue
			}

			msg, ok := toIntent(connID, env)
			if !ok {
				// Unknown or malformed intents are fire-and-forget; drop.
				log.Debug("discarding unknown intent",
					zap.String("conn", connID), zap.String("event", env.Event))
				continue
			}
			h.Inbox() <- msg
		}
	}
}

// toIntent maps one wire frame to one typed hub message. Admin frames fan
// out into a closed set of command types here so the hub never dispatches on
// a command string.
func toIntent(connID string, env types.Envelope) (hub.Msg, bool) {
	switch env.Event {
	case types.EvtCrashPlaceBet:
		return hub.RelayBet{ConnID: connID, Data: env.Data}, true

	case types.EvtCrashCashout:
		return hub.RelayCashout{ConnID: connID, Data: env.Data}, true

	case types.EvtCaseGetLobbies:
		return hub.GetLobbies{ConnID: connID}, true

	case types.EvtCaseCreateLobby:
		var p types.CreateLobbyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.CreateLobby{
			ConnID:      connID,
			CreatorID:   p.CreatorID,
			CreatorName: p.CreatorName,
			CreatorRank: p.CreatorRank,
			TierID:      p.CaseID,
			Cost:        p.Cost,
		}, true

	case types.EvtCaseCancelLobby:
		var p types.CancelLobbyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.CancelLobby{LobbyID: p.LobbyID}, true

	case types.EvtCaseJoinLobby:
		var p types.JoinLobbyPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.JoinLobby{
			ConnID:     connID,
			LobbyID:    p.LobbyID,
			JoinerID:   p.JoinerID,
			JoinerName: p.JoinerName,
			JoinerRank: p.JoinerRank,
		}, true

	case types.EvtCaseBotJoin:
		var p types.BotJoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.BotJoin{ConnID: connID, LobbyID: p.LobbyID}, true

	case types.EvtAdminCommand:
		var p types.AdminCommandPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return adminIntent(p)

	case types.EvtDonationSent:
		var p types.DonationPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.Donation{
			FromUsername: p.FromUsername,
			ToUsername:   p.ToUsername,
			ToUserID:     p.ToUserID,
			Amount:       p.Amount,
		}, true

	case types.EvtGlobalAnnouncement:
		var p types.AnnouncementPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.Announcement{Text: p.Text}, true

	case types.EvtSendChat:
		var p types.SendChatPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, false
		}
		return hub.SendChat{
			ID:           p.ID,
			Author:       p.Author,
			Text:         p.Text,
			IsOwner:      p.IsOwner,
			EquippedRank: p.EquippedRank,
		}, true

	default:
		return nil, false
	}
}

func adminIntent(p types.AdminCommandPayload) (hub.Msg, bool) {
	switch p.Command {
	case types.AdminClearChat:
		return hub.ClearChat{}, true
	case types.AdminToggleMute:
		return hub.ToggleMute{}, true
	case types.AdminSetSlowMode:
		return hub.SetSlowMode{Seconds: p.Seconds}, true
	case types.AdminBanUser:
		return hub.BanUser{Username: p.Username}, true
	case types.AdminUnbanUser:
		return hub.UnbanUser{Username: p.Username}, true
	case types.AdminSetMode:
		return hub.SetMode{Mode: p.Mode}, true
	case types.AdminSetMultiplier:
		return hub.SetMultiplier{Value: p.Value}, true
	case types.AdminForceCrash:
		return hub.ForceCrashTarget{Target: p.Target}, true
	case types.AdminRainCoins:
		return hub.RainCoins{Amount: p.Value}, true
	case types.AdminGiftCoins:
		return hub.GiftCoins{Data: p.Extra}, true
	default:
		return nil, false
	}
}
