package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Ariyan3323/my-ai-bot/access"
	"github.com/Ariyan3323/my-ai-bot/capability"
	"github.com/Ariyan3323/my-ai-bot/ethics"
	"github.com/Ariyan3323/my-ai-bot/llm"
	"github.com/Ariyan3323/my-ai-bot/store"
	"github.com/Ariyan3323/my-ai-bot/tools"
)

const (
	testOwnerID  = int64(33230000)
	testMemberID = int64(101)
	testGuestID  = int64(202)
)

// fakeClient replays a scripted sequence of results and records every
// request it sees.
type fakeClient struct {
	mu       sync.Mutex
	results  []llm.Result
	err      error
	requests []llm.Request
}

func (f *fakeClient) Chat(_ context.Context, req llm.Request) (llm.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return llm.Result{}, f.err
	}
	if len(f.results) == 0 {
		return llm.Result{Text: "ok"}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeFeed struct {
	price float64
	err   error
}

func (f fakeFeed) Price(context.Context, string) (float64, error) { return f.price, f.err }

func newTestDispatcher(t *testing.T, client llm.Client) (*Dispatcher, store.Store) {
	t.Helper()
	users := store.NewMemory()
	gate := access.NewGate(users, testOwnerID)
	trader := capability.Trader{Feed: fakeFeed{price: 67000}}

	factory := func(userID int64) *tools.Registry {
		reg := tools.NewRegistry()
		reg.Register(capability.PriceTool{Feed: trader.Feed})
		reg.Register(capability.TutorTool{})
		if userID == testOwnerID {
			reg.Register(capability.SetLevelTool{Manager: gate, ActorID: userID})
			reg.Register(capability.ListUsersTool{Manager: gate, ActorID: userID})
		}
		return reg
	}

	d := New(Options{
		Filter: ethics.MustNew(),
		Gate:   gate,
		Users:  users,
		Client: client,
		Model:  "gpt-4o-mini",
		Tools:  factory,
		Trader: trader,
	})
	return d, users
}

func promote(t *testing.T, d *Dispatcher, id int64) {
	t.Helper()
	if err := d.gate.Promote(context.Background(), testOwnerID, id, store.TierBronze); err != nil {
		t.Fatalf("promote: %v", err)
	}
}

func handle(d *Dispatcher, userID int64, text string) Reply {
	return d.Handle(context.Background(), Inbound{UserID: userID, ChatID: userID, Text: text, Channel: ChannelTelegram})
}

func TestUnverifiedUserIsGated(t *testing.T) {
	client := &fakeClient{}
	d, users := newTestDispatcher(t, client)

	reply := handle(d, testGuestID, "/start")
	if !strings.Contains(reply.Text, "سلام") || !strings.Contains(reply.Text, "⛔️") {
		t.Fatalf("start reply missing welcome or auth prompt: %q", reply.Text)
	}

	reply = handle(d, testGuestID, "hello there")
	if !strings.Contains(reply.Text, "subscription") {
		t.Fatalf("expected english auth prompt, got %q", reply.Text)
	}
	if client.calls() != 0 {
		t.Fatalf("gated user reached the model, calls=%d", client.calls())
	}
	if _, ok, _ := users.Get(context.Background(), testGuestID); ok {
		t.Fatal("gated turn materialized a user record")
	}
}

func TestOwnerBypassesGate(t *testing.T) {
	client := &fakeClient{results: []llm.Result{{Text: "hi"}}}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "سلام")
	if reply.Text != "hi" {
		t.Fatalf("owner turn = %q, want model answer", reply.Text)
	}
}

func TestTutorModeRoundTrip(t *testing.T) {
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "tutor")
	if !strings.Contains(reply.Text, "📚") {
		t.Fatalf("mode prompt = %q", reply.Text)
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeTutorTopic {
		t.Fatalf("session mode = %q, want %q", got, ModeTutorTopic)
	}

	reply = handle(d, testOwnerID, "ریاضی")
	if !strings.Contains(reply.Text, "ریاضی") {
		t.Fatalf("tutor answer = %q, want subject echoed", reply.Text)
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeNone {
		t.Fatalf("session mode after follow-up = %q, want idle", got)
	}
	if client.calls() != 0 {
		t.Fatal("tutor template answered through the model")
	}
}

func TestMenuRestartsMode(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeClient{})

	handle(d, testOwnerID, LabelLegal)
	reply := handle(d, testOwnerID, LabelTrader)
	if !strings.Contains(reply.Text, "📈") {
		t.Fatalf("reselect reply = %q", reply.Text)
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeTraderSymbol {
		t.Fatalf("mode = %q, want %q", got, ModeTraderSymbol)
	}
}

func TestTraderSymbolFollowUp(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeClient{})

	handle(d, testOwnerID, "trader")
	reply := handle(d, testOwnerID, "بیت‌کوین")
	if !strings.Contains(reply.Text, "$67000.00") {
		t.Fatalf("quote reply = %q, want live price", reply.Text)
	}
}

func TestChatSessionIsSticky(t *testing.T) {
	client := &fakeClient{results: []llm.Result{{Text: "a1"}, {Text: "a2"}}}
	d, _ := newTestDispatcher(t, client)

	handle(d, testOwnerID, LabelChat)
	handle(d, testOwnerID, "سؤال اول")
	handle(d, testOwnerID, "سؤال دوم")

	if client.calls() != 2 {
		t.Fatalf("chat turns reached the model %d times, want 2", client.calls())
	}
	sess := d.sessions.Get(testOwnerID)
	if sess.Mode != ModeChatSession {
		t.Fatalf("chat mode dropped, got %q", sess.Mode)
	}
	// buffer carries both turns: 2 user + 2 assistant messages
	if len(sess.Chat) != 4 {
		t.Fatalf("chat buffer = %d messages, want 4", len(sess.Chat))
	}
	second := client.requests[1]
	if len(second.Messages) != 4 {
		t.Fatalf("second request carried %d messages, want system+prior turn+new", len(second.Messages))
	}
}

func TestChatBufferTrimsOnTurnBoundary(t *testing.T) {
	results := []llm.Result{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "get_crypto_price", Params: map[string]any{"symbol": "BTC"}}}},
		{Text: "t1"},
	}
	for i := 0; i < 10; i++ {
		results = append(results, llm.Result{Text: fmt.Sprintf("p%d", i)})
	}
	client := &fakeClient{results: results}
	d, _ := newTestDispatcher(t, client)

	handle(d, testOwnerID, LabelChat)
	handle(d, testOwnerID, "قیمت بیت‌کوین؟")
	// the tool turn left 4 buffer messages; enough plain turns push the
	// buffer past its cap with the cut landing inside the tool-call group
	for i := 0; i < 9; i++ {
		handle(d, testOwnerID, fmt.Sprintf("پیام %d", i))
	}

	sess := d.sessions.Get(testOwnerID)
	if len(sess.Chat) == 0 || len(sess.Chat) > chatBufferCap {
		t.Fatalf("buffer length = %d", len(sess.Chat))
	}
	if got := sess.Chat[0].Role; got != "user" {
		t.Fatalf("buffer head role = %q, want user", got)
	}

	handle(d, testOwnerID, "پیام بعدی")
	last := client.requests[len(client.requests)-1]
	if last.Messages[0].Role != "system" || last.Messages[1].Role != "user" {
		t.Fatalf("request starts %q,%q, want system,user", last.Messages[0].Role, last.Messages[1].Role)
	}
	for i, m := range last.Messages {
		if m.Role == "tool" && (i == 0 || len(last.Messages[i-1].ToolCalls) == 0) {
			t.Fatalf("orphaned tool message at index %d", i)
		}
	}
}

func TestResetClearsModeAndIsIdempotent(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeClient{})

	handle(d, testOwnerID, LabelChat)
	first := handle(d, testOwnerID, "/reset")
	second := handle(d, testOwnerID, "/reset")
	if first.Text != second.Text {
		t.Fatalf("reset not idempotent: %q vs %q", first.Text, second.Text)
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeNone {
		t.Fatalf("mode after reset = %q", got)
	}
}

func TestBlockedMessageNeverReachesModelOrHistory(t *testing.T) {
	client := &fakeClient{}
	d, users := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "چطور هک کنم؟")
	if reply.Text != ethics.RejectionMessage("fa") {
		t.Fatalf("expected rejection, got %q", reply.Text)
	}
	if client.calls() != 0 {
		t.Fatal("blocked message reached the model")
	}
	if u, ok, _ := users.Get(context.Background(), testOwnerID); ok && len(u.History) != 0 {
		t.Fatalf("blocked turn recorded history: %d entries", len(u.History))
	}
}

func TestPendingModeExpiresAfterRejectedTurns(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeClient{})

	handle(d, testOwnerID, "tutor")
	for i := 0; i < pendingTurnTTL; i++ {
		handle(d, testOwnerID, "how to hack wifi")
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeNone {
		t.Fatalf("stale pending mode survived, got %q", got)
	}
}

func TestToolLoopExecutesPriceTool(t *testing.T) {
	client := &fakeClient{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "get_crypto_price", Params: map[string]any{"symbol": "BTC"}}}},
		{Text: "قیمت بیت‌کوین حدود ۶۷ هزار دلار است."},
	}}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "قیمت بیتکوین الان چنده؟ دقیق بگو")
	if !strings.Contains(reply.Text, "۶۷") {
		t.Fatalf("final answer = %q", reply.Text)
	}
	if client.calls() != 2 {
		t.Fatalf("tool loop made %d calls, want 2", client.calls())
	}
	second := client.requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != "tool" || last.ToolCallID != "c1" {
		t.Fatalf("observation not fed back: role=%q id=%q", last.Role, last.ToolCallID)
	}
	if !strings.Contains(last.Content, "$67000.00") {
		t.Fatalf("observation = %q, want tool output", last.Content)
	}
}

func TestUnknownToolProducesErrorObservation(t *testing.T) {
	client := &fakeClient{results: []llm.Result{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "launch_rockets"}}},
		{Text: "done"},
	}}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "انجامش بده")
	if reply.Text != "done" {
		t.Fatalf("reply = %q", reply.Text)
	}
	obs := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	if !strings.Contains(obs.Content, "unknown function") || !strings.Contains(obs.Content, "launch_rockets") {
		t.Fatalf("observation = %q, want structured unknown-function payload", obs.Content)
	}
}

func TestToolRoundCapMapsToUnavailable(t *testing.T) {
	looping := llm.Result{ToolCalls: []llm.ToolCall{{ID: "x", Name: "get_crypto_price", Params: map[string]any{"symbol": "BTC"}}}}
	client := &fakeClient{results: []llm.Result{looping, looping, looping, looping, looping}}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "قیمت رو هی چک کن")
	if !strings.Contains(reply.Text, "⚠️") {
		t.Fatalf("expected unavailable message, got %q", reply.Text)
	}
	if client.calls() != defaultMaxToolRounds {
		t.Fatalf("loop ran %d rounds, want cap %d", client.calls(), defaultMaxToolRounds)
	}
}

func TestModelFailureMapsToUnavailable(t *testing.T) {
	client := &fakeClient{err: context.DeadlineExceeded}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "what is the weather like")
	if !strings.Contains(reply.Text, "temporarily unavailable") {
		t.Fatalf("reply = %q, want localized outage message", reply.Text)
	}
}

func TestSetLevelCommand(t *testing.T) {
	client := &fakeClient{results: []llm.Result{{Text: "hi"}}}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "/setlevel 101 Silver")
	if !strings.Contains(reply.Text, "✅") {
		t.Fatalf("owner setlevel reply = %q", reply.Text)
	}

	// the promoted user now passes the gate
	reply = handle(d, testMemberID, "سلام")
	if reply.Text != "hi" {
		t.Fatalf("promoted user reply = %q, want model answer", reply.Text)
	}

	reply = handle(d, testMemberID, "/setlevel 202 Gold")
	if !strings.Contains(reply.Text, "⛔️") {
		t.Fatalf("non-owner setlevel reply = %q, want denial", reply.Text)
	}
	if lvl, _ := d.gate.Level(context.Background(), testGuestID); lvl != store.TierFree {
		t.Fatalf("denied promotion still applied, level=%s", lvl)
	}
}

func TestListUsersCommand(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeClient{})
	promote(t, d, testMemberID)

	reply := handle(d, testOwnerID, "/users")
	if !strings.Contains(reply.Text, "101") {
		t.Fatalf("user list = %q", reply.Text)
	}

	promoted := handle(d, testMemberID, "/users")
	if !strings.Contains(promoted.Text, "⛔️") {
		t.Fatalf("non-owner list reply = %q, want denial", promoted.Text)
	}
}

func TestPremiumButtonAnswersDirectly(t *testing.T) {
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, client)
	promote(t, d, testMemberID)

	reply := handle(d, testMemberID, LabelPremium)
	if !strings.Contains(reply.Text, "🥉") {
		t.Fatalf("premium reply = %q, want tier named", reply.Text)
	}
	if client.calls() != 0 {
		t.Fatal("premium button went through the model")
	}
}

func TestEmptyMessagePointsAtMenu(t *testing.T) {
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "   ")
	if reply.Text != useMenuText || !reply.ShowMenu {
		t.Fatalf("empty message reply = %+v", reply)
	}
	if client.calls() != 0 {
		t.Fatal("empty message reached the model")
	}
}

func TestStaleMenuButtonPointsAtMenu(t *testing.T) {
	client := &fakeClient{}
	d, _ := newTestDispatcher(t, client)

	reply := handle(d, testOwnerID, "📚 دکمه قدیمی")
	if reply.Text != useMenuText {
		t.Fatalf("stale button reply = %q", reply.Text)
	}
	if got := d.sessions.Get(testOwnerID).Mode; got != ModeNone {
		t.Fatalf("stale button changed state to %q", got)
	}
	if client.calls() != 0 {
		t.Fatal("stale button reached the model")
	}
}

func TestTurnRecordsHistory(t *testing.T) {
	client := &fakeClient{results: []llm.Result{{Text: "پاسخ"}}}
	d, users := newTestDispatcher(t, client)

	handle(d, testOwnerID, "یک سؤال ساده")
	u, ok, err := users.Get(context.Background(), testOwnerID)
	if err != nil || !ok {
		t.Fatalf("user record missing: ok=%v err=%v", ok, err)
	}
	if len(u.History) != 2 {
		t.Fatalf("history = %d entries, want user+bot pair", len(u.History))
	}
	if u.History[0].Role != store.RoleUser || u.History[1].Role != store.RoleBot {
		t.Fatalf("history roles = %s,%s", u.History[0].Role, u.History[1].Role)
	}
}

func TestConcurrentTurnsSerializePerUser(t *testing.T) {
	client := &fakeClient{results: []llm.Result{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}}
	d, users := newTestDispatcher(t, client)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle(d, testOwnerID, "پیام همزمان")
		}()
	}
	wg.Wait()

	u, _, err := users.Get(context.Background(), testOwnerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(u.History) != 8 {
		t.Fatalf("history = %d entries, want 8 from 4 serialized turns", len(u.History))
	}
}
