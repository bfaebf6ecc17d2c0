package dispatch

import "strings"

// Menu button labels shown by the Telegram reply keyboard.
const (
	LabelTutor   = "📚 معلم خصوصی"
	LabelWriter  = "✍️ مقاله / پروژه"
	LabelLegal   = "⚖️ حقوقی ایران"
	LabelTrader  = "📈 آموزش ترید"
	LabelChat    = "💬 گفتگوی آزاد"
	LabelPremium = "💰 اشتراک ماهانه"
)

// MenuLabels is the keyboard layout, one row per entry pair.
var MenuLabels = [][]string{
	{LabelTutor, LabelWriter},
	{LabelLegal, LabelTrader},
	{LabelChat, LabelPremium},
}

var menuModes = map[string]Mode{
	LabelTutor:  ModeTutorTopic,
	"tutor":     ModeTutorTopic,
	"معلم":      ModeTutorTopic,
	LabelWriter: ModeWriterBrief,
	"writer":    ModeWriterBrief,
	LabelLegal:  ModeLegalCase,
	"legal":     ModeLegalCase,
	LabelTrader: ModeTraderSymbol,
	"trader":    ModeTraderSymbol,
	LabelChat:   ModeChatSession,
	"chat":      ModeChatSession,
	"/chat":     ModeChatSession,
}

// parseMenu maps a message to the mode its menu selection starts.
// Matching is exact after trimming, with a few bare keyword aliases.
func parseMenu(text string) (Mode, bool) {
	mode, ok := menuModes[strings.TrimSpace(strings.ToLower(text))]
	if ok {
		return mode, true
	}
	mode, ok = menuModes[strings.TrimSpace(text)]
	return mode, ok
}

func isStart(text string) bool {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "/start", "start", "شروع":
		return true
	}
	return false
}

func isReset(text string) bool {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "/reset", "reset", "ریست":
		return true
	}
	return false
}

func isPremium(text string) bool {
	return strings.TrimSpace(text) == LabelPremium
}

var menuEmoji = []string{"📚", "✍️", "⚖️", "📈", "💬", "💰"}

// looksLikeMenu reports a message that starts with a menu emoji but did
// not match any label, such as a stale button from an older keyboard.
func looksLikeMenu(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, emoji := range menuEmoji {
		if strings.HasPrefix(trimmed, emoji) {
			return true
		}
	}
	return false
}
