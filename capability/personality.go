package capability

import (
	"context"
	"fmt"

	"github.com/Ariyan3323/my-ai-bot/store"
)

// AnalyzePersonality simulates the personality analysis step: it derives a
// label from the stored history and records it on the user. A real
// implementation would ask the model backend; this one is a stub, matching
// the rest of the capability layer.
func AnalyzePersonality(ctx context.Context, users store.Store, userID int64) (string, error) {
	u, found, err := users.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user %d: %w", userID, err)
	}
	if !found || len(u.History) == 0 {
		return "❌ سابقه مکالمه کافی برای تحلیل شخصیت وجود ندارد.", nil
	}

	label := "کاربر عادی، محتاط، و علاقه‌مند به آموزش"
	if _, err := users.Update(ctx, userID, func(u *store.User) {
		store.SetPersonality(u, label)
	}); err != nil {
		return "", fmt.Errorf("store personality for %d: %w", userID, err)
	}

	return fmt.Sprintf(
		"🧠 **گزارش تحلیل شخصیت کاربر %d:**\n\n"+
			"تیپ شخصیتی: **%s**\n"+
			"بر اساس %d پیام آخر، این کاربر:\n"+
			"🔹 از لحن محترمانه استفاده می‌کند.\n"+
			"🔹 به امنیت و حریم خصوصی اهمیت می‌دهد.",
		userID, label, len(u.History)), nil
}

type PersonalityTool struct {
	Users  store.Store
	UserID int64
}

func (PersonalityTool) Name() string { return "analyze_personality" }

func (PersonalityTool) Description() string {
	return "Analyzes the current user's personality from recent conversation history and stores the label. Use when the user asks what the bot thinks of them."
}

func (PersonalityTool) ParameterSchema() string {
	return `{"type":"object","properties":{}}`
}

func (p PersonalityTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return AnalyzePersonality(ctx, p.Users, p.UserID)
}
