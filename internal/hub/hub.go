package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/astrarise/astrarise-backend/internal/battle"
	"github.com/astrarise/astrarise-backend/internal/catalog"
	"github.com/astrarise/astrarise-backend/internal/chat"
	"github.com/astrarise/astrarise-backend/internal/crash"
	"github.com/astrarise/astrarise-backend/internal/types"
)

const defaultMode = "normal"

// Options control the round cadence. Tests compress these; production uses
// the defaults, which match the live client's animation timing.
type Options struct {
	CountdownSeconds int           // WAITING length in 1 Hz ticks
	WaitTick         time.Duration // countdown cadence
	RunTick          time.Duration // multiplier cadence
	Cooldown         time.Duration // CRASHED -> next WAITING delay
	ChatHistory      int           // rolling chat buffer size
}

func (o Options) withDefaults() Options {
	if o.CountdownSeconds == 0 {
		o.CountdownSeconds = 10
	}
	if o.WaitTick == 0 {
		o.WaitTick = time.Second
	}
	if o.RunTick == 0 {
		o.RunTick = 50 * time.Millisecond
	}
	if o.Cooldown == 0 {
		o.Cooldown = 5 * time.Second
	}
	if o.ChatHistory == 0 {
		o.ChatHistory = 50
	}
	return o
}

// Hub is the one goroutine allowed to touch shared game state: the crash
// round, the lobby collection, the chat room and the client registry. Timers
// and websocket readers alike talk to it through the inbox.
type Hub struct {
	inbox   chan Msg
	clients map[string]chan []byte

	round   *crash.Round
	battles *battle.Manager
	room    *chat.Room

	mode       string
	globalMult float64

	gen         uint64
	cancelTimer context.CancelFunc

	opts Options
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, opts Options) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:      make(chan Msg, 256),
		clients:    make(map[string]chan []byte),
		round:      crash.NewRound(),
		battles:    battle.NewManager(catalog.Default()),
		room:       chat.NewRoom(opts.ChatHistory),
		mode:       defaultMode,
		globalMult: 1.0,
		opts:       opts,
		log:        log,
		ctx:        ctx,
		cancel:     cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	h.beginWaiting()
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return
		case m := <-h.inbox:
			if _, ok := m.(Shutdown); ok {
				h.shutdown()
				return
			}
			h.dispatch(m)
		}
	}
}

// dispatch runs one intent. A panic here means a bug in a single handler;
// per the failure policy it drops that intent and keeps the round loop alive
// for everyone else.
func (h *Hub) dispatch(m Msg) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("intent dropped after panic", zap.Any("panic", r))
		}
	}()

	switch msg := m.(type) {
	case Connect:
		h.clients[msg.ConnID] = msg.Outbox
		h.replay(msg.ConnID)
		h.log.Debug("client connected", zap.String("conn", msg.ConnID))

	case Disconnect:
		if ch, ok := h.clients[msg.ConnID]; ok {
			close(ch)
			delete(h.clients, msg.ConnID)
		}
		h.retireLobbiesFor(msg.ConnID)
		h.log.Debug("client disconnected", zap.String("conn", msg.ConnID))

	case waitTick:
		if msg.gen != h.gen {
			break
		}
		remaining := h.round.CountdownTick()
		h.broadcast(types.EvtCrashTimer, types.CrashTimerPayload{Timer: remaining})
		if remaining <= 0 {
			h.beginRunning()
		}

	case runTick:
		if msg.gen != h.gen {
			break
		}
		if h.round.Advance(time.Now()) {
			h.stopTimer()
			h.broadcast(types.EvtCrashEnd, types.CrashEndPayload{Multiplier: h.round.Multiplier})
			h.log.Debug("round crashed", zap.Float64("multiplier", h.round.Multiplier))
			h.scheduleRestart()
		} else {
			h.broadcast(types.EvtCrashTick, types.CrashTickPayload{Multiplier: h.round.Multiplier})
		}

	case roundRestart:
		if msg.gen != h.gen {
			break
		}
		h.beginWaiting()

	case ForceCrashTarget:
		h.round.ForceTarget(msg.Target)
		if msg.Target != nil {
			h.log.Info("crash target override staged", zap.Float64("target", *msg.Target))
		} else {
			h.log.Info("crash target override cleared")
		}

	case CreateLobby:
		lb := h.battles.Create(msg.CreatorID, msg.CreatorName, msg.CreatorRank, msg.TierID, msg.Cost, msg.ConnID)
		h.broadcast(types.EvtLobbyCreated, lobbyPayload(*lb))
		h.log.Info("lobby created", zap.String("lobby", lb.ID), zap.String("tier", lb.TierID))

	case CancelLobby:
		if h.battles.Cancel(msg.LobbyID) {
			h.broadcast(types.EvtLobbyRemoved, types.LobbyRemovedPayload{LobbyID: msg.LobbyID})
		}

	case JoinLobby:
		if !h.battles.Has(msg.LobbyID) {
			// Stale join: tell only the sender the lobby is gone.
			h.send(msg.ConnID, types.EvtLobbyRemoved, types.LobbyRemovedPayload{LobbyID: msg.LobbyID})
			break
		}
		res, ok := h.battles.Join(msg.LobbyID, msg.JoinerID, msg.JoinerName, msg.JoinerRank)
		if !ok {
			break // self-join, rejected silently
		}
		h.finishBattle(res)

	case BotJoin:
		res, ok := h.battles.BotJoin(msg.LobbyID)
		if !ok {
			h.send(msg.ConnID, types.EvtLobbyRemoved, types.LobbyRemovedPayload{LobbyID: msg.LobbyID})
			break
		}
		h.finishBattle(res)

	case GetLobbies:
		h.send(msg.ConnID, types.EvtLobbyList, lobbyListPayload(h.battles.List()))

	case RelayBet:
		h.broadcastExcept(msg.ConnID, types.EvtCrashLiveBet, msg.Data)

	case RelayCashout:
		h.broadcastExcept(msg.ConnID, types.EvtCrashLiveCashout, msg.Data)

	case Donation:
		h.broadcast(types.EvtDonationReceived, types.DonationPayload{
			FromUsername: msg.FromUsername,
			ToUsername:   msg.ToUsername,
			ToUserID:     msg.ToUserID,
			Amount:       msg.Amount,
		})

	case SendChat:
		stored, ok := h.room.Append(chat.Message{
			ID:           msg.ID,
			Author:       msg.Author,
			Text:         msg.Text,
			IsOwner:      msg.IsOwner,
			EquippedRank: msg.EquippedRank,
		})
		if ok {
			h.broadcast(types.EvtNewChatMessage, stored)
		}

	case Announcement:
		m := h.room.Announce(msg.Text)
		h.broadcast(types.EvtNewChatMessage, m)
		h.broadcast(types.EvtGlobalAnnouncement, types.AnnouncementPayload{Text: msg.Text})

	case ClearChat:
		h.room.Clear()
		h.broadcast(types.EvtChatHistory, []chat.Message{})
		h.broadcast(types.EvtNewChatMessage, h.room.System("Chat history has been cleared by an admin."))

	case ToggleMute:
		status := "unlocked"
		if h.room.ToggleMute() {
			status = "locked"
		}
		h.broadcast(types.EvtNewChatMessage, h.room.System("Global chat is now "+status+"."))

	case SetSlowMode:
		h.room.SetSlowMode(msg.Seconds)

	case BanUser:
		h.room.Ban(msg.Username)
		h.log.Info("user banned from chat", zap.String("user", msg.Username))

	case UnbanUser:
		h.room.Unban(msg.Username)

	case SetMode:
		h.mode = msg.Mode
		h.broadcast(types.EvtModeChange, types.ModeChangePayload{Mode: h.mode})

	case SetMultiplier:
		h.globalMult = msg.Value
		h.broadcast(types.EvtMultiplierChange, types.MultiplierChangePayload{Value: h.globalMult})

	case RainCoins:
		h.broadcast(types.EvtRainEvent, types.MultiplierChangePayload{Value: msg.Amount})

	case GiftCoins:
		h.broadcast(types.EvtGiftNotification, msg.Data)

	case Inspect:
		msg.Reply <- View{
			Phase:            string(h.round.Phase),
			Multiplier:       h.round.Multiplier,
			Target:           h.round.Target,
			Countdown:        h.round.Countdown,
			NumClients:       len(h.clients),
			Lobbies:          h.battles.List(),
			Mode:             h.mode,
			GlobalMultiplier: h.globalMult,
			ChatMessages:     len(h.room.History()),
			Muted:            h.room.Muted(),
		}
	}
}

// --- crash phase driving ---

func (h *Hub) beginWaiting() {
	h.stopTimer()
	h.round.BeginWaiting(h.opts.CountdownSeconds)
	timer := h.round.Countdown
	h.broadcast(types.EvtCrashState, types.CrashStatePayload{
		State:      string(crash.PhaseWaiting),
		Timer:      &timer,
		Multiplier: 1.0,
	})
	h.startTicker(h.opts.WaitTick, func(gen uint64) Msg { return waitTick{gen: gen} })
}

func (h *Hub) beginRunning() {
	h.stopTimer()
	if h.round.Forced() {
		h.log.Info("next round target forced by admin")
	}
	h.round.BeginRunning(time.Now())
	h.broadcast(types.EvtCrashState, types.CrashStatePayload{
		State:      string(crash.PhaseRunning),
		Multiplier: 1.0,
	})
	h.startTicker(h.opts.RunTick, func(gen uint64) Msg { return runTick{gen: gen} })
}

// startTicker arms a periodic feed of generation-stamped messages. Bumping
// the generation first means any fire still in flight from a previous phase
// is dropped on arrival, so two tick streams can never overlap.
func (h *Hub) startTicker(every time.Duration, mk func(uint64) Msg) {
	h.gen++
	gen := h.gen
	ctx, cancel := context.WithCancel(h.ctx)
	h.cancelTimer = cancel
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				select {
				case h.inbox <- mk(gen):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}

func (h *Hub) scheduleRestart() {
	h.gen++
	gen := h.gen
	ctx, cancel := context.WithCancel(h.ctx)
	h.cancelTimer = cancel
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(h.opts.Cooldown):
			select {
			case h.inbox <- roundRestart{gen: gen}:
			case <-ctx.Done():
			}
		}
	}()
}

func (h *Hub) stopTimer() {
	if h.cancelTimer != nil {
		h.cancelTimer()
		h.cancelTimer = nil
	}
	h.gen++
}

// --- battles ---

func (h *Hub) finishBattle(res battle.Result) {
	h.broadcast(types.EvtBattleStart, types.BattleStartPayload{
		LobbyID:     res.LobbyID,
		CaseID:      res.TierID,
		Player1ID:   res.Player1ID,
		Player1Name: res.Player1Name,
		Player1Tag:  res.Player1Tag,
		Player1Rank: res.Player1Rank,
		Player2ID:   res.Player2ID,
		Player2Name: res.Player2Name,
		Player2Tag:  res.Player2Tag,
		Player2Rank: res.Player2Rank,
		WinnerID:    res.WinnerID,
	})
	h.broadcast(types.EvtLobbyRemoved, types.LobbyRemovedPayload{LobbyID: res.LobbyID})
	h.log.Info("battle resolved",
		zap.String("lobby", res.LobbyID),
		zap.String("winner", res.WinnerID))
}

func (h *Hub) retireLobbiesFor(connID string) {
	for _, id := range h.battles.DropConnection(connID) {
		h.broadcast(types.EvtLobbyRemoved, types.LobbyRemovedPayload{LobbyID: id})
	}
}

// --- sync & fan-out ---

// replay brings one freshly connected client up to the state every other
// client already sees. Pure sends, no side effects: replaying the lobby list
// must not look like lobby creation.
func (h *Hub) replay(connID string) {
	h.send(connID, types.EvtChatHistory, h.room.History())
	if h.room.Muted() {
		h.send(connID, types.EvtNewChatMessage, chat.Notice("Chat is currently locked by admins."))
	}
	state := types.CrashStatePayload{State: string(h.round.Phase), Multiplier: h.round.Multiplier}
	if h.round.Phase == crash.PhaseWaiting {
		timer := h.round.Countdown
		state.Timer = &timer
	}
	h.send(connID, types.EvtCrashState, state)
	if h.mode != defaultMode {
		h.send(connID, types.EvtModeChange, types.ModeChangePayload{Mode: h.mode})
	}
	if h.globalMult != 1.0 {
		h.send(connID, types.EvtMultiplierChange, types.MultiplierChangePayload{Value: h.globalMult})
	}
	h.send(connID, types.EvtLobbyList, lobbyListPayload(h.battles.List()))
}

func (h *Hub) broadcast(event string, data any) {
	h.fanout(types.Encode(event, data), "")
}

func (h *Hub) broadcastExcept(except string, event string, data any) {
	h.fanout(types.Encode(event, data), except)
}

func (h *Hub) send(connID string, event string, data any) {
	ch, ok := h.clients[connID]
	if !ok {
		return
	}
	if !trySend(ch, types.Encode(event, data)) {
		h.dropClient(connID)
	}
}

// fanout delivers one frame to every registered client. A client whose
// outbox is full is dropped rather than letting its connection stall the
// hub; the websocket layer handles the closed channel.
func (h *Hub) fanout(frame []byte, except string) {
	var dropped []string
	for id, ch := range h.clients {
		if id == except {
			continue
		}
		if !trySend(ch, frame) {
			dropped = append(dropped, id)
		}
	}
	for _, id := range dropped {
		h.dropClient(id)
	}
}

func (h *Hub) dropClient(connID string) {
	ch, ok := h.clients[connID]
	if !ok {
		return
	}
	close(ch)
	delete(h.clients, connID)
	h.log.Warn("dropped slow client", zap.String("conn", connID))
	h.retireLobbiesFor(connID)
}

func trySend(ch chan []byte, frame []byte) bool {
	select {
	case ch <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) shutdown() {
	h.stopTimer()
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.cancel()
}

func lobbyPayload(lb battle.Lobby) types.LobbyPayload {
	return types.LobbyPayload{
		LobbyID:     lb.ID,
		CreatorID:   lb.CreatorID,
		CreatorName: lb.CreatorName,
		CreatorRank: lb.CreatorRank,
		CaseID:      lb.TierID,
		Cost:        lb.Cost,
	}
}

func lobbyListPayload(lobbies []battle.Lobby) []types.LobbyPayload {
	out := make([]types.LobbyPayload, 0, len(lobbies))
	for _, lb := range lobbies {
		out = append(out, lobbyPayload(lb))
	}
	return out
}
