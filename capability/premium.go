package capability

import (
	"context"
	"fmt"

	"github.com/Ariyan3323/my-ai-bot/store"
)

// HandlePremium describes what a tier unlocks.
func HandlePremium(tier store.Tier) string {
	switch tier {
	case store.TierOwner:
		return "👑 شما مالک ربات هستید و به همه قابلیت‌ها دسترسی کامل دارید."
	case store.TierGold:
		return "🥇 سطح طلایی: همه سرویس‌ها، پاسخ صوتی، و تحلیل شخصیت فعال است."
	case store.TierSilver:
		return "🥈 سطح نقره‌ای: معلم خصوصی، نویسندگی و تحلیل ترید فعال است."
	case store.TierBronze:
		return "🥉 سطح برنزی: معلم خصوصی و مشاوره حقوقی فعال است."
	default:
		return "💰 اشتراک ماهانه شامل دسترسی به همه خدمات پیشرفته است.\nدر حال حاضر در دسترس نیست — به زودی فعال می‌شود."
	}
}

// LevelReporter resolves a user's tier; satisfied by access.Gate.
type LevelReporter interface {
	Level(ctx context.Context, id int64) (store.Tier, error)
}

type PremiumTool struct {
	Levels LevelReporter
	UserID int64
}

func (PremiumTool) Name() string { return "premium_info" }

func (PremiumTool) Description() string {
	return "Reports the current user's access level and what it unlocks. Use when the user asks about subscriptions or premium features."
}

func (PremiumTool) ParameterSchema() string {
	return `{"type":"object","properties":{}}`
}

func (p PremiumTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	tier, err := p.Levels.Level(ctx, p.UserID)
	if err != nil {
		return "", fmt.Errorf("resolve level: %w", err)
	}
	return fmt.Sprintf("سطح فعلی شما: %s\n%s", tier, HandlePremium(tier)), nil
}
