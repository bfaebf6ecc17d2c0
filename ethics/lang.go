package ethics

// DetectLang guesses the reply language for localized user-facing strings.
// Persian-specific letters win over generic Arabic script because the bot's
// audience is primarily Persian-speaking; Arabic-specific letters flip the
// guess to Arabic. Everything else falls back to English.
func DetectLang(text string) string {
	arabicScript := false
	persianLetters := 0
	arabicLetters := 0
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF || r >= 0xFB50 && r <= 0xFDFF {
			arabicScript = true
		}
		switch r {
		case 'پ', 'چ', 'ژ', 'گ', 'ک', 'ی':
			persianLetters++
		case 'ة', 'ي', 'ك', 'ء':
			arabicLetters++
		}
	}
	switch {
	case arabicLetters > persianLetters:
		return "ar"
	case arabicScript:
		return "fa"
	default:
		return "en"
	}
}

var rejectionMessages = map[string]string{
	"fa": "⚠️ متأسفم، من نمی‌توانم در مورد درخواست‌های غیرقانونی یا غیراخلاقی کمک کنم.",
	"en": "⚠️ I'm sorry, I cannot assist with illegal or unethical requests.",
	"ar": "⚠️ عذراً، لا أستطيع المساعدة في الطلبات غير القانونية.",
}

// RejectionMessage returns the localized refusal for a filtered message.
func RejectionMessage(lang string) string {
	if msg, ok := rejectionMessages[lang]; ok {
		return msg
	}
	return rejectionMessages["fa"]
}
