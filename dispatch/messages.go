package dispatch

import "github.com/Ariyan3323/my-ai-bot/ethics"

const welcomeText = `سلام! 🤖
من دستیار هوشمند شما هستم. یکی از قابلیت‌ها را از منو انتخاب کنید یا سؤال خود را مستقیم بپرسید.

📚 معلم خصوصی
✍️ مقاله / پروژه
⚖️ حقوقی ایران
📈 آموزش ترید
💬 گفتگوی آزاد
💰 اشتراک ماهانه`

var authPrompts = map[string]string{
	"fa": "⛔️ برای استفاده از ربات ابتدا باید اشتراک تهیه کنید. برای اطلاعات بیشتر «💰 اشتراک ماهانه» را بزنید.",
	"en": "⛔️ You need an active subscription to use this bot. Tap \"💰 اشتراک ماهانه\" for details.",
	"ar": "⛔️ تحتاج إلى اشتراك نشط لاستخدام هذا البوت.",
}

var unavailableMessages = map[string]string{
	"fa": "⚠️ سرویس موقتاً در دسترس نیست. لطفاً کمی بعد دوباره تلاش کنید.",
	"en": "⚠️ The service is temporarily unavailable. Please try again shortly.",
	"ar": "⚠️ الخدمة غير متاحة مؤقتًا. يرجى المحاولة مرة أخرى لاحقًا.",
}

var modePrompts = map[Mode]string{
	ModeTutorTopic:   "📚 نام درس مورد نظر را بفرستید (مثلاً ریاضی یا فیزیک).",
	ModeWriterBrief:  "✍️ موضوع را به این شکل بفرستید: موضوع | نوع سند | سطح (مثلاً: انرژی خورشیدی | مقاله | دانشگاهی).",
	ModeLegalCase:    "⚖️ نوع پرونده را بفرستید: طلاق، حضانت، کارگری یا اجاره.",
	ModeTraderSymbol: "📈 نام ارز را بفرستید (مثلاً بیت‌کوین یا ETH).",
}

const chatStartedText = "💬 گفتگوی آزاد فعال شد. هر سؤالی دارید بپرسید. برای خروج «/reset» را بفرستید."

const resetDoneText = "🔄 گفتگو از نو شروع شد. یکی از گزینه‌های منو را انتخاب کنید."

const useMenuText = "🤔 متوجه نشدم. لطفاً یکی از گزینه‌های منو را انتخاب کنید."

func authPrompt(text string) string {
	return localized(authPrompts, text)
}

func unavailableMessage(text string) string {
	return localized(unavailableMessages, text)
}

func localized(messages map[string]string, text string) string {
	if msg, ok := messages[ethics.DetectLang(text)]; ok {
		return msg
	}
	return messages["fa"]
}
