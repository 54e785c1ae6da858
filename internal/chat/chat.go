package chat

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const SystemAuthor = "SYSTEM"

// Message is one chat line as relayed to clients. Identity is whatever the
// client claimed; the server does not verify it.
type Message struct {
	ID           string `json:"id"`
	Author       string `json:"author"`
	Text         string `json:"text"`
	IsOwner      bool   `json:"isOwner"`
	EquippedRank string `json:"equippedRank,omitempty"`
	Time         int64  `json:"time"`
}

// Room holds the rolling chat history and the moderation gates in front of
// it. Like the battle manager it is only touched from the hub goroutine.
type Room struct {
	msgs     []Message
	maxMsgs  int
	muted    bool
	slow     time.Duration
	limiters map[string]*rate.Limiter
	banned   map[string]bool
}

func NewRoom(maxMsgs int) *Room {
	if maxMsgs <= 0 {
		maxMsgs = 50
	}
	return &Room{
		maxMsgs:  maxMsgs,
		limiters: make(map[string]*rate.Limiter),
		banned:   make(map[string]bool),
	}
}

// Append runs the moderation gates and, if the message passes, stores it.
// Owners bypass mute and slow mode but not the ban list.
func (r *Room) Append(m Message) (Message, bool) {
	if r.banned[m.Author] {
		return Message{}, false
	}
	if r.muted && !m.IsOwner {
		return Message{}, false
	}
	if r.slow > 0 && !m.IsOwner && !r.limiter(m.Author).Allow() {
		return Message{}, false
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Time == 0 {
		m.Time = time.Now().UnixMilli()
	}
	r.push(m)
	return m, true
}

// System appends an unconditional server-authored notice.
func (r *Room) System(text string) Message {
	m := Message{
		ID:      uuid.NewString(),
		Author:  SystemAuthor,
		Text:    text,
		IsOwner: true,
		Time:    time.Now().UnixMilli(),
	}
	r.push(m)
	return m
}

// Announce appends an admin announcement, bypassing the moderation gates.
func (r *Room) Announce(text string) Message {
	m := Message{
		ID:      uuid.NewString(),
		Author:  "ANNOUNCEMENT",
		Text:    text,
		IsOwner: true,
		Time:    time.Now().UnixMilli(),
	}
	r.push(m)
	return m
}

// Notice builds a system message without recording it, for per-connection
// replay (e.g. the locked-chat banner shown to late joiners).
func Notice(text string) Message {
	return Message{
		ID:      uuid.NewString(),
		Author:  SystemAuthor,
		Text:    text,
		IsOwner: true,
		Time:    time.Now().UnixMilli(),
	}
}

func (r *Room) History() []Message {
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *Room) Clear() {
	r.msgs = nil
}

// ToggleMute flips the global mute and reports the new state.
func (r *Room) ToggleMute() bool {
	r.muted = !r.muted
	return r.muted
}

func (r *Room) Muted() bool { return r.muted }

// SetSlowMode limits non-owner authors to one message per interval. Zero or
// negative seconds turns slow mode off and forgets per-author limiters.
func (r *Room) SetSlowMode(seconds int) {
	if seconds <= 0 {
		r.slow = 0
		r.limiters = make(map[string]*rate.Limiter)
		return
	}
	r.slow = time.Duration(seconds) * time.Second
	r.limiters = make(map[string]*rate.Limiter)
}

func (r *Room) Ban(author string)   { r.banned[author] = true }
func (r *Room) Unban(author string) { delete(r.banned, author) }
func (r *Room) Banned(author string) bool {
	return r.banned[author]
}

func (r *Room) push(m Message) {
	r.msgs = append(r.msgs, m)
	if len(r.msgs) > r.maxMsgs {
		r.msgs = r.msgs[1:]
	}
}

func (r *Room) limiter(author string) *rate.Limiter {
	l, ok := r.limiters[author]
	if !ok {
		l = rate.NewLimiter(rate.Every(r.slow), 1)
		r.limiters[author] = l
	}
	return l
}
