package capability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Ariyan3323/my-ai-bot/store"
)

type fakeFeed struct {
	prices map[string]float64
	err    error
}

func (f fakeFeed) Price(ctx context.Context, symbol string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.prices[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("unknown symbol %s", symbol)
	}
	return p, nil
}

func TestParseBrief(t *testing.T) {
	cases := []struct {
		in                   string
		topic, docType, lvl  string
	}{
		{"هوش مصنوعی|مقاله|دانشگاهی", "هوش مصنوعی", "مقاله", "دانشگاهی"},
		{"اقتصاد|پایان‌نامه", "اقتصاد", "پایان‌نامه", "دانشگاهی"},
		{"just a raw topic", "just a raw topic", "مقاله", "دانشگاهی"},
		{"topic| |  ", "topic", "مقاله", "دانشگاهی"},
	}
	for _, tc := range cases {
		topic, docType, lvl := ParseBrief(tc.in)
		if topic != tc.topic || docType != tc.docType || lvl != tc.lvl {
			t.Errorf("ParseBrief(%q) = (%q,%q,%q), want (%q,%q,%q)",
				tc.in, topic, docType, lvl, tc.topic, tc.docType, tc.lvl)
		}
	}
}

func TestTraderHandlesPriceQuestions(t *testing.T) {
	tr := Trader{Feed: fakeFeed{prices: map[string]float64{"BTC": 64000, "ETH": 3200}}}
	ctx := context.Background()

	got := tr.Handle(ctx, "بیت‌کوین قیمت")
	if !strings.Contains(got, "64000") {
		t.Errorf("btc answer missing price: %q", got)
	}

	got = tr.Handle(ctx, "what is the ETH price?")
	if !strings.Contains(got, "3200") {
		t.Errorf("eth answer missing price: %q", got)
	}

	got = tr.Handle(ctx, "نظرت درباره بازار چیه؟")
	if !strings.Contains(got, "جفت ارز") {
		t.Errorf("generic question should get guidance, got %q", got)
	}
}

func TestTraderFeedFailure(t *testing.T) {
	tr := Trader{Feed: fakeFeed{err: fmt.Errorf("down")}}
	got := tr.Handle(context.Background(), "قیمت btc")
	if !strings.Contains(got, "خطا") {
		t.Errorf("feed failure should produce a localized error, got %q", got)
	}
}

func TestPriceTool(t *testing.T) {
	tool := PriceTool{Feed: fakeFeed{prices: map[string]float64{"BTC": 50000}}}
	ctx := context.Background()

	out, err := tool.Execute(ctx, map[string]any{"symbol": "btc"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "50000") {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := tool.Execute(ctx, map[string]any{}); err == nil {
		t.Error("expected error for missing symbol")
	}
}

func TestSetLevelTool(t *testing.T) {
	mgr := &fakeManager{}
	tool := SetLevelTool{Manager: mgr, ActorID: 1}
	ctx := context.Background()

	out, err := tool.Execute(ctx, map[string]any{"user_id": float64(9), "level": "gold"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "✅") {
		t.Errorf("unexpected output: %q", out)
	}
	if mgr.lastTarget != 9 || mgr.lastTier != store.TierGold {
		t.Errorf("manager called with (%d, %q)", mgr.lastTarget, mgr.lastTier)
	}

	out, err = tool.Execute(ctx, map[string]any{"user_id": float64(9), "level": "platinum"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "❌") {
		t.Errorf("invalid tier should produce a rejection, got %q", out)
	}

	if _, err := tool.Execute(ctx, map[string]any{"level": "gold"}); err == nil {
		t.Error("expected error for missing user_id")
	}
}

type fakeManager struct {
	lastTarget int64
	lastTier   store.Tier
}

func (f *fakeManager) Promote(ctx context.Context, actorID, targetID int64, tier store.Tier) error {
	f.lastTarget = targetID
	f.lastTier = tier
	return nil
}

func (f *fakeManager) ListUsers(ctx context.Context, actorID int64) ([]store.User, error) {
	return []store.User{{ID: 5, Level: store.TierSilver}}, nil
}

func TestAnalyzePersonality(t *testing.T) {
	users := store.NewMemory()
	ctx := context.Background()

	// No history yet.
	out, err := AnalyzePersonality(ctx, users, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "❌") {
		t.Errorf("expected insufficient-history message, got %q", out)
	}

	if _, err := users.Update(ctx, 3, func(u *store.User) {
		store.AppendHistory(u, store.RoleUser, "hi", time.Now())
	}); err != nil {
		t.Fatal(err)
	}

	out, err = AnalyzePersonality(ctx, users, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "🧠") {
		t.Errorf("expected analysis report, got %q", out)
	}

	u, _, _ := users.Get(ctx, 3)
	if u.Personality == store.DefaultPersonality {
		t.Error("personality label was not stored")
	}
}

func TestFormatUserList(t *testing.T) {
	out := FormatUserList(nil)
	if !strings.Contains(out, "هنوز کاربری") {
		t.Errorf("empty list message missing: %q", out)
	}
	out = FormatUserList([]store.User{
		{ID: 7, Level: store.TierBronze},
		{ID: 3, Level: store.TierGold},
		{ID: 5, Level: store.TierBronze},
	})
	if !strings.Contains(out, "ID: 7") || !strings.Contains(out, "Bronze") {
		t.Errorf("list rendering wrong: %q", out)
	}
	// higher tiers first, ties by ID
	lines := strings.Split(strings.TrimSpace(out), "\n")
	got := lines[len(lines)-3:]
	for i, want := range []string{"ID: 3", "ID: 5", "ID: 7"} {
		if !strings.HasPrefix(got[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, got[i], want)
		}
	}
}

func TestWriterBriefFallbackNeverFails(t *testing.T) {
	out := HandleWriting(ParseBrief("no separator at all"))
	if !strings.Contains(out, "no separator at all") {
		t.Errorf("raw text should become the topic: %q", out)
	}
}

func TestTraderQuote(t *testing.T) {
	trader := Trader{Feed: fakeFeed{prices: map[string]float64{"ETH": 3120.5}}}
	ctx := context.Background()

	out := trader.Quote(ctx, "اتریوم")
	if !strings.Contains(out, "$3120.50") {
		t.Errorf("known coin quote = %q", out)
	}

	out = Trader{Feed: fakeFeed{err: fmt.Errorf("feed down")}}.Quote(ctx, "DOGE")
	if !strings.Contains(out, "DOGE") {
		t.Errorf("unknown ticker should surface the feed error: %q", out)
	}

	// free text falls through to the trading question handler
	out = trader.Quote(ctx, "چطور ترید یاد بگیرم؟")
	if !strings.Contains(out, "📊") {
		t.Errorf("free-text question = %q, want guidance", out)
	}
	out = trader.Quote(ctx, "قیمت eth چنده؟")
	if !strings.Contains(out, "$3120.50") {
		t.Errorf("price question = %q, want live price", out)
	}
}

func TestMediaStubsAcknowledge(t *testing.T) {
	if out := HandleVoice(""); !strings.Contains(out, "❌") {
		t.Errorf("empty voice input = %q", out)
	}
	out, err := VoiceTool{}.Execute(context.Background(), map[string]any{"text": "سلام"})
	if err != nil || !strings.Contains(out, "🎙️") {
		t.Errorf("voice tool = %q err=%v", out, err)
	}
	out, err = ImageTool{}.Execute(context.Background(), map[string]any{"prompt": "غروب"})
	if err != nil || !strings.Contains(out, "غروب") {
		t.Errorf("image tool = %q err=%v", out, err)
	}
}

func TestHandleLegalFallbackListsTopicsInOrder(t *testing.T) {
	out := HandleLegal("ارث")
	want := "طلاق، حضانت، کارگری، اجاره"
	if !strings.Contains(out, want) {
		t.Errorf("fallback = %q, want stable topic list %q", out, want)
	}

	if out := HandleLegal("طلاق"); !strings.Contains(out, "لایحه طلاق") {
		t.Errorf("known case type = %q", out)
	}
}
