// Package capability holds the fixed capability handlers (tutoring, writing,
// legal, trading, image, voice, premium, personality, admin) and exposes the
// model-invocable ones as tools. The handlers are template stubs around the
// one real collaborator each has (the price feed, the user store); none of
// them performs real media or market work.
package capability

import (
	"context"
	"fmt"
	"strings"
)

const defaultTutorSubject = "ریاضی"

// HandleTutor produces the tutoring template for a subject.
func HandleTutor(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = defaultTutorSubject
	}
	return fmt.Sprintf(
		"📚 **معلم خصوصی — %s**\n\n"+
			"برنامه پیشنهادی:\n"+
			"1. مرور مفاهیم پایه %s\n"+
			"2. حل تمرین مرحله‌به‌مرحله با توضیح\n"+
			"3. آزمون کوتاه برای سنجش پیشرفت\n\n"+
			"سؤال اول خود را بپرسید تا شروع کنیم.",
		subject, subject)
}

type TutorTool struct{}

func (TutorTool) Name() string { return "tutor_lesson" }

func (TutorTool) Description() string {
	return "Produces a tutoring plan for a school subject (math, physics, languages, programming). Use when the user asks to learn or be taught a subject."
}

func (TutorTool) ParameterSchema() string {
	return `{"type":"object","properties":{"subject":{"type":"string","description":"The subject to tutor, e.g. math or physics."}},"required":["subject"]}`
}

func (TutorTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	subject, _ := params["subject"].(string)
	return HandleTutor(subject), nil
}
