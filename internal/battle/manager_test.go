package battle

import (
	"testing"

	"github.com/astrarise/astrarise-backend/internal/catalog"
)

// oneTagCatalog guarantees both sides draw the same tag, forcing a tie.
func oneTagCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Tag{{ID: "only", Value: 100, Weight: 1}},
		[]catalog.Tier{{ID: "starter", Cost: 100, TagIDs: []string{"only"}}},
	)
}

func newTestManager() *Manager {
	m := NewManager(oneTagCatalog())
	n := 0
	m.newID = func() string {
		n++
		return map[int]string{1: "L1", 2: "L2", 3: "L3"}[n]
	}
	return m
}

func TestCreate_ListsInInsertionOrder(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")
	m.Create("u2", "Bob", "gold", "starter", 100, "conn-b")

	got := m.List()
	if len(got) != 2 || got[0].ID != "L1" || got[1].ID != "L2" {
		t.Fatalf("unexpected list: %+v", got)
	}
	if got[1].CreatorRank != "gold" {
		t.Fatalf("rank not carried: %+v", got[1])
	}
}

func TestCancel_IsIdempotent(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	if !m.Cancel("L1") {
		t.Fatalf("first cancel should remove the lobby")
	}
	if m.Cancel("L1") {
		t.Fatalf("second cancel must be a no-op")
	}
	if len(m.List()) != 0 {
		t.Fatalf("lobby still listed after cancel")
	}
}

func TestJoin_ConsumesLobbyExactlyOnce(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	res, ok := m.Join("L1", "u2", "Bob", "")
	if !ok {
		t.Fatalf("first join should resolve")
	}
	if res.Player1ID != "u1" || res.Player2ID != "u2" {
		t.Fatalf("unexpected pairing: %+v", res)
	}
	if res.Player1Tag == "" || res.Player2Tag == "" {
		t.Fatalf("both sides must draw a tag: %+v", res)
	}

	if _, ok := m.Join("L1", "u3", "Carol", ""); ok {
		t.Fatalf("second join consumed an already-resolved lobby")
	}
	if m.Has("L1") {
		t.Fatalf("lobby survived its own battle")
	}
}

func TestJoin_TieGoesToCreator(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	res, ok := m.Join("L1", "u2", "Bob", "")
	if !ok {
		t.Fatalf("join failed")
	}
	// single-tag catalog: equal values, creator wins the tie
	if res.WinnerID != "u1" {
		t.Fatalf("tie winner: got %q, want creator %q", res.WinnerID, "u1")
	}
}

func TestJoin_SelfJoinRejected(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	if _, ok := m.Join("L1", "u1", "Alice", ""); ok {
		t.Fatalf("creator joined own lobby")
	}
	if !m.Has("L1") {
		t.Fatalf("self-join must leave the lobby open")
	}
}

func TestJoin_UnknownLobbyIsNoOp(t *testing.T) {
	m := newTestManager()
	if _, ok := m.Join("nope", "u2", "Bob", ""); ok {
		t.Fatalf("joined a lobby that does not exist")
	}
}

func TestJoin_UnknownTierStillResolvesViaFallback(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "no-such-tier", 100, "conn-a")

	res, ok := m.Join("L1", "u2", "Bob", "")
	if !ok {
		t.Fatalf("join with unknown tier must fail safe, not no-op")
	}
	if res.Player1Tag != "only" || res.Player2Tag != "only" {
		t.Fatalf("expected fallback tag on both sides: %+v", res)
	}
}

func TestBotJoin_UsesBotIdentity(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	res, ok := m.BotJoin("L1")
	if !ok {
		t.Fatalf("bot join failed")
	}
	if res.Player2ID != BotID || res.Player2Name != BotName {
		t.Fatalf("bot identity: %+v", res)
	}
	if m.Has("L1") {
		t.Fatalf("bot join must consume the lobby")
	}

	if _, ok := m.BotJoin("L1"); ok {
		t.Fatalf("bot joined a consumed lobby")
	}
}

func TestDropConnection_RemovesOnlyThatConnsLobbies(t *testing.T) {
	m := newTestManager()
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")
	m.Create("u2", "Bob", "", "starter", 100, "conn-b")
	m.Create("u1", "Alice", "", "starter", 100, "conn-a")

	removed := m.DropConnection("conn-a")
	if len(removed) != 2 || removed[0] != "L1" || removed[1] != "L3" {
		t.Fatalf("unexpected removals: %v", removed)
	}

	left := m.List()
	if len(left) != 1 || left[0].ID != "L2" {
		t.Fatalf("unexpected survivors: %+v", left)
	}

	if got := m.DropConnection("conn-a"); len(got) != 0 {
		t.Fatalf("second drop should find nothing, got %v", got)
	}
}
