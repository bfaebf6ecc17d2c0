package capability

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/Ariyan3323/my-ai-bot/store"
)

var processStart = time.Now()

// SystemStatus renders the admin dashboard report from process-level
// runtime metrics.
func SystemStatus() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf(
		"📊 **داشبورد مدیریتی (مانیتورینگ سیستم):**\n\n"+
			"🧠 **CPU:** %d هسته در دسترس\n"+
			"💾 **حافظه در استفاده:** %.1fMB (تخصیص کل %.1fMB)\n"+
			"🔁 **گوروتین‌های فعال:** %d\n"+
			"⏱ **مدت اجرا:** %s\n\n"+
			"✅ **وضعیت:** سیستم در حالت پایداری کامل است.",
		runtime.NumCPU(),
		float64(m.Alloc)/(1024*1024),
		float64(m.TotalAlloc)/(1024*1024),
		runtime.NumGoroutine(),
		time.Since(processStart).Round(time.Second))
}

// SelfReport is the "self-improvement" gimmick: a hard-coded progress
// report with no actual learning or upgrading behind it.
func SelfReport() string {
	return "🚀 **گزارش خودکفایی ایجنت:**\n\n" +
		"🔹 الگوهای مکالمه اخیر مرور شد.\n" +
		"🔹 حافظه مکالمات به‌روزرسانی شد.\n" +
		"🔹 آماده پاسخ‌گویی به درخواست‌های جدید هستم."
}

// FormatUserList renders the owner's user enumeration.
func FormatUserList(users []store.User) string {
	var b strings.Builder
	b.WriteString("👥 **لیست کاربران و سطوح دسترسی:**\n\n")
	if len(users) == 0 {
		b.WriteString("هنوز کاربری ثبت نشده است.\n")
		return b.String()
	}
	sorted := append([]store.User(nil), users...)
	sort.Slice(sorted, func(i, j int) bool {
		if ri, rj := sorted[i].Level.Rank(), sorted[j].Level.Rank(); ri != rj {
			return ri > rj
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, u := range sorted {
		fmt.Fprintf(&b, "ID: %d | سطح: %s\n", u.ID, u.Level)
	}
	return b.String()
}

type SystemStatusTool struct{}

func (SystemStatusTool) Name() string { return "system_status" }

func (SystemStatusTool) Description() string {
	return "Reports process health: CPU count, memory in use, goroutines, uptime. Admin only; use when the owner asks how the system is doing."
}

func (SystemStatusTool) ParameterSchema() string {
	return `{"type":"object","properties":{}}`
}

func (SystemStatusTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return SystemStatus(), nil
}

type SelfReportTool struct{}

func (SelfReportTool) Name() string { return "self_report" }

func (SelfReportTool) Description() string {
	return "Returns the agent's canned self-improvement report. Admin only."
}

func (SelfReportTool) ParameterSchema() string {
	return `{"type":"object","properties":{}}`
}

func (SelfReportTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return SelfReport(), nil
}

// UserManager is the slice of the access gate the admin tools need.
type UserManager interface {
	Promote(ctx context.Context, actorID, targetID int64, tier store.Tier) error
	ListUsers(ctx context.Context, actorID int64) ([]store.User, error)
}

type ListUsersTool struct {
	Manager UserManager
	ActorID int64
}

func (ListUsersTool) Name() string { return "list_users" }

func (ListUsersTool) Description() string {
	return "Lists all known users and their access levels. Admin only."
}

func (ListUsersTool) ParameterSchema() string {
	return `{"type":"object","properties":{}}`
}

func (l ListUsersTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	users, err := l.Manager.ListUsers(ctx, l.ActorID)
	if err != nil {
		return "", err
	}
	return FormatUserList(users), nil
}

type SetLevelTool struct {
	Manager UserManager
	ActorID int64
}

func (SetLevelTool) Name() string { return "set_user_level" }

func (SetLevelTool) Description() string {
	return "Sets another user's access level (Free, Bronze, Silver, Gold). Admin only."
}

func (SetLevelTool) ParameterSchema() string {
	return `{"type":"object","properties":{"user_id":{"type":"integer"},"level":{"type":"string","description":"Free, Bronze, Silver or Gold"}},"required":["user_id","level"]}`
}

func (s SetLevelTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawID, ok := params["user_id"].(float64)
	if !ok || rawID == 0 {
		return "", fmt.Errorf("missing user_id")
	}
	levelName, _ := params["level"].(string)
	tier, ok := store.ParseTier(levelName)
	if !ok {
		return fmt.Sprintf("❌ سطح دسترسی «%s» معتبر نیست.", levelName), nil
	}
	targetID := int64(rawID)
	if err := s.Manager.Promote(ctx, s.ActorID, targetID, tier); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ سطح دسترسی کاربر %d به «%s» ارتقا یافت.", targetID, tier), nil
}
