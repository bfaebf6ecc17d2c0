package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Ariyan3323/my-ai-bot/access"
	"github.com/Ariyan3323/my-ai-bot/capability"
	"github.com/Ariyan3323/my-ai-bot/ethics"
	"github.com/Ariyan3323/my-ai-bot/llm"
	"github.com/Ariyan3323/my-ai-bot/store"
	"github.com/Ariyan3323/my-ai-bot/tools"
)

const (
	defaultMaxToolRounds = 4

	// chatBufferCap bounds the sticky free-chat context sent to the model.
	chatBufferCap = 20
)

const systemPromptBase = `تو یک دستیار هوشمند چندمنظوره هستی. پاسخ‌ها را کوتاه، دقیق و به زبان پیام کاربر بده. هر جا لازم بود از ابزارهای در دسترس استفاده کن و در پایان فقط پاسخ نهایی را بنویس.`

// RegistryFactory builds the tool registry for one user's turn. Admin
// tools bind the acting user ID, so the set differs per caller.
type RegistryFactory func(userID int64) *tools.Registry

type Options struct {
	Logger   *slog.Logger
	Filter   *ethics.Filter
	Gate     *access.Gate
	Users    store.Store
	Sessions *Sessions
	Client   llm.Client
	Model    string
	Tools    RegistryFactory
	Trader   capability.Trader

	// MaxToolRounds caps tool-call rounds per LLM exchange. Zero means
	// the default.
	MaxToolRounds int

	// Now is overridable for tests.
	Now func() time.Time
}

type Dispatcher struct {
	log      *slog.Logger
	filter   *ethics.Filter
	gate     *access.Gate
	users    store.Store
	sessions *Sessions
	client   llm.Client
	model    string
	tools    RegistryFactory
	trader   capability.Trader

	maxToolRounds int
	now           func() time.Time
	turns         *turnLocks
}

func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		log:           opts.Logger,
		filter:        opts.Filter,
		gate:          opts.Gate,
		users:         opts.Users,
		sessions:      opts.Sessions,
		client:        opts.Client,
		model:         opts.Model,
		tools:         opts.Tools,
		trader:        opts.Trader,
		maxToolRounds: opts.MaxToolRounds,
		now:           opts.Now,
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.sessions == nil {
		d.sessions = NewSessions()
	}
	if d.maxToolRounds <= 0 {
		d.maxToolRounds = defaultMaxToolRounds
	}
	if d.now == nil {
		d.now = time.Now
	}
	d.turns = newTurnLocks()
	return d
}

// Handle runs one full conversation turn. Failures never escape as
// errors: every outcome, including backend trouble, maps to a localized
// user-facing reply.
func (d *Dispatcher) Handle(ctx context.Context, in Inbound) Reply {
	unlock := d.turns.lock(in.UserID)
	defer unlock()

	log := d.log.With("user_id", in.UserID, "channel", string(in.Channel))
	text := strings.TrimSpace(in.Text)

	if text == "" {
		log.Info("turn_empty")
		return Reply{Text: useMenuText, ShowMenu: true}
	}

	if category, blocked := d.filter.Match(text); blocked {
		log.Info("turn_rejected", "category", category)
		d.agePending(in.UserID)
		return Reply{Text: ethics.RejectionMessage(ethics.DetectLang(text))}
	}

	verified, err := d.gate.IsVerified(ctx, in.UserID)
	if err != nil {
		log.Error("gate_error", "error", err.Error())
		return Reply{Text: unavailableMessage(text)}
	}
	if !verified {
		log.Info("turn_unverified")
		if isStart(text) {
			return Reply{Text: welcomeText + "\n\n" + authPrompt(text), ShowMenu: true}
		}
		return Reply{Text: authPrompt(text)}
	}

	switch {
	case isStart(text):
		d.sessions.Clear(in.UserID)
		log.Info("turn_start")
		return Reply{Text: welcomeText, ShowMenu: true}
	case isReset(text):
		d.sessions.Clear(in.UserID)
		log.Info("turn_reset")
		return Reply{Text: resetDoneText, ShowMenu: true}
	case isPremium(text):
		level, err := d.gate.Level(ctx, in.UserID)
		if err != nil {
			log.Error("level_error", "error", err.Error())
			return Reply{Text: unavailableMessage(text)}
		}
		return d.finish(ctx, log, in, text, capability.HandlePremium(level))
	case strings.HasPrefix(text, "/users"):
		return Reply{Text: d.handleListUsers(ctx, log, in.UserID)}
	case strings.HasPrefix(text, "/setlevel"):
		return Reply{Text: d.handleSetLevel(ctx, log, in.UserID, text)}
	}

	if mode, ok := parseMenu(text); ok {
		return d.startMode(log, in.UserID, mode)
	}
	if looksLikeMenu(text) {
		log.Info("turn_unrecognized_selection")
		return Reply{Text: useMenuText, ShowMenu: true}
	}

	if sess := d.sessions.Get(in.UserID); sess.Mode != ModeNone {
		return d.resolvePending(ctx, log, in, text, sess)
	}

	return d.llmTurn(ctx, log, in, text)
}

// startMode parks the user in the selected mode and asks the follow-up
// question. Selecting an already active mode just re-prompts.
func (d *Dispatcher) startMode(log *slog.Logger, userID int64, mode Mode) Reply {
	if mode == ModeChatSession {
		d.sessions.Set(userID, Session{Mode: ModeChatSession})
		log.Info("mode_start", "mode", string(mode))
		return Reply{Text: chatStartedText}
	}
	d.sessions.Set(userID, Session{Mode: mode})
	log.Info("mode_start", "mode", string(mode))
	return Reply{Text: modePrompts[mode]}
}

// resolvePending consumes the parked mode with the follow-up message.
// Free chat is sticky and keeps its buffer until a reset.
func (d *Dispatcher) resolvePending(ctx context.Context, log *slog.Logger, in Inbound, text string, sess Session) Reply {
	if sess.Mode == ModeChatSession {
		return d.chatTurn(ctx, log, in, text, sess)
	}

	d.sessions.Clear(in.UserID)
	log.Info("mode_resolve", "mode", string(sess.Mode))

	var out string
	switch sess.Mode {
	case ModeTutorTopic:
		out = capability.HandleTutor(text)
	case ModeWriterBrief:
		out = capability.HandleWriting(capability.ParseBrief(text))
	case ModeLegalCase:
		out = capability.HandleLegal(text)
	case ModeTraderSymbol:
		out = d.trader.Quote(ctx, text)
	default:
		return d.llmTurn(ctx, log, in, text)
	}
	return d.finish(ctx, log, in, text, out)
}

// agePending expires a stale one-shot mode when intercepted turns keep
// it from being consumed.
func (d *Dispatcher) agePending(userID int64) {
	sess := d.sessions.Get(userID)
	if sess.Mode == ModeNone || sess.Mode == ModeChatSession {
		return
	}
	sess.Age++
	if sess.Age >= pendingTurnTTL {
		d.sessions.Clear(userID)
		return
	}
	d.sessions.Set(userID, sess)
}

// llmTurn answers an idle free-form message with one capped tool-loop
// exchange. The prompt carries the stored personality and recent history.
func (d *Dispatcher) llmTurn(ctx context.Context, log *slog.Logger, in Inbound, text string) Reply {
	u, ok, err := d.users.Get(ctx, in.UserID)
	if err != nil {
		log.Error("store_error", "error", err.Error())
		return Reply{Text: unavailableMessage(text)}
	}
	if !ok {
		u = store.NewUser(in.UserID)
	}

	messages := []llm.Message{
		{Role: "system", Content: buildSystemPrompt(u)},
		{Role: "user", Content: text},
	}
	answer, _, err := d.runToolLoop(ctx, log, d.tools(in.UserID), messages)
	if err != nil {
		log.Error("llm_turn_error", "error", err.Error())
		return Reply{Text: unavailableMessage(text)}
	}
	return d.finish(ctx, log, in, text, answer)
}

// chatTurn is the sticky free-chat exchange: the session buffer carries
// prior turns so the model sees the whole conversation.
func (d *Dispatcher) chatTurn(ctx context.Context, log *slog.Logger, in Inbound, text string, sess Session) Reply {
	u, ok, err := d.users.Get(ctx, in.UserID)
	if err != nil {
		log.Error("store_error", "error", err.Error())
		return Reply{Text: unavailableMessage(text)}
	}
	if !ok {
		u = store.NewUser(in.UserID)
	}

	messages := []llm.Message{{Role: "system", Content: buildSystemPrompt(u)}}
	messages = append(messages, sess.Chat...)
	messages = append(messages, llm.Message{Role: "user", Content: text})

	answer, history, err := d.runToolLoop(ctx, log, d.tools(in.UserID), messages)
	if err != nil {
		log.Error("chat_turn_error", "error", err.Error())
		return Reply{Text: unavailableMessage(text)}
	}

	sess.Chat = trimChat(history[1:])
	d.sessions.Set(in.UserID, sess)
	return d.finish(ctx, log, in, text, answer)
}

func (d *Dispatcher) handleListUsers(ctx context.Context, log *slog.Logger, actorID int64) string {
	users, err := d.gate.ListUsers(ctx, actorID)
	if errors.Is(err, access.ErrNotOwner) {
		log.Info("admin_denied", "command", "/users")
		return "⛔️ این دستور مخصوص مدیر است."
	}
	if err != nil {
		log.Error("list_users_error", "error", err.Error())
		return unavailableMessage("")
	}
	return capability.FormatUserList(users)
}

func (d *Dispatcher) handleSetLevel(ctx context.Context, log *slog.Logger, actorID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return "فرمت درست: /setlevel <user_id> <tier>"
	}
	targetID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "فرمت درست: /setlevel <user_id> <tier>"
	}
	tier, ok := store.ParseTier(fields[2])
	if !ok {
		return fmt.Sprintf("❌ سطح «%s» معتبر نیست.", fields[2])
	}

	switch err := d.gate.Promote(ctx, actorID, targetID, tier); {
	case errors.Is(err, access.ErrNotOwner):
		log.Info("admin_denied", "command", "/setlevel")
		return "⛔️ این دستور مخصوص مدیر است."
	case err != nil:
		log.Error("set_level_error", "error", err.Error())
		return fmt.Sprintf("❌ تغییر سطح انجام نشد: %v", err)
	}
	log.Info("level_set", "target_id", targetID, "tier", string(tier))
	return fmt.Sprintf("✅ سطح کاربر %d به %s تغییر کرد.", targetID, tier)
}

// finish records the completed turn in the user's rolling history and
// returns the reply. A failed write is logged but never shown.
func (d *Dispatcher) finish(ctx context.Context, log *slog.Logger, in Inbound, text, out string) Reply {
	at := d.now()
	if _, err := d.users.Update(ctx, in.UserID, func(u *store.User) {
		store.AppendHistory(u, store.RoleUser, text, at)
		store.AppendHistory(u, store.RoleBot, out, at)
	}); err != nil {
		log.Warn("history_write_error", "error", err.Error())
	}
	return Reply{Text: out}
}

func buildSystemPrompt(u store.User) string {
	var b strings.Builder
	b.WriteString(systemPromptBase)
	if u.Personality != "" && u.Personality != store.DefaultPersonality {
		b.WriteString("\n\nشخصیت کاربر: ")
		b.WriteString(u.Personality)
	}
	if recent := store.RecentAsText(u); recent != "" {
		b.WriteString("\n\nگفتگوهای اخیر:\n")
		b.WriteString(recent)
	}
	return b.String()
}

// trimChat bounds the buffer without cutting inside a turn: the cut
// point advances to the next user message so no tool observation is left
// without the assistant tool_calls message it answers.
func trimChat(messages []llm.Message) []llm.Message {
	if len(messages) <= chatBufferCap {
		return messages
	}
	tail := messages[len(messages)-chatBufferCap:]
	for i, m := range tail {
		if m.Role == "user" {
			return tail[i:]
		}
	}
	return nil
}
