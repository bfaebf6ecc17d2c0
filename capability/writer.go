package capability

import (
	"context"
	"fmt"
	"strings"
)

const (
	// BriefSeparator splits a writing brief into topic|docType|level.
	BriefSeparator = "|"

	defaultDocType  = "مقاله"
	defaultDocLevel = "دانشگاهی"
)

// ParseBrief splits a free-text writing brief on the separator token. A
// brief without the separator falls back to the raw text as the topic with
// default document type and level; the turn never fails on a malformed
// brief.
func ParseBrief(text string) (topic, docType, level string) {
	topic = strings.TrimSpace(text)
	docType = defaultDocType
	level = defaultDocLevel

	parts := strings.Split(text, BriefSeparator)
	if len(parts) < 2 {
		return topic, docType, level
	}
	topic = strings.TrimSpace(parts[0])
	if v := strings.TrimSpace(parts[1]); v != "" {
		docType = v
	}
	if len(parts) >= 3 {
		if v := strings.TrimSpace(parts[2]); v != "" {
			level = v
		}
	}
	return topic, docType, level
}

// HandleWriting produces the writing-assistant template.
func HandleWriting(topic, docType, level string) string {
	if strings.TrimSpace(topic) == "" {
		topic = "موضوع آزاد"
	}
	if strings.TrimSpace(docType) == "" {
		docType = defaultDocType
	}
	if strings.TrimSpace(level) == "" {
		level = defaultDocLevel
	}
	return fmt.Sprintf(
		"✍️ **%s — %s (سطح %s)**\n\n"+
			"ساختار پیشنهادی:\n"+
			"1. مقدمه و طرح مسئله\n"+
			"2. بدنه اصلی با استدلال و منابع\n"+
			"3. جمع‌بندی و نتیجه‌گیری\n\n"+
			"بخش اول را برایتان آماده می‌کنم؛ اگر منبع خاصی مد نظر دارید بفرستید.",
		docType, topic, level)
}

type WriterTool struct{}

func (WriterTool) Name() string { return "write_document" }

func (WriterTool) Description() string {
	return "Drafts an outline for an essay, article, project report, or thesis. Use when the user asks for help writing a document."
}

func (WriterTool) ParameterSchema() string {
	return `{"type":"object","properties":{"topic":{"type":"string"},"doc_type":{"type":"string","description":"essay, article, project, thesis"},"level":{"type":"string","description":"school, university, professional"}},"required":["topic"]}`
}

func (WriterTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	topic, _ := params["topic"].(string)
	docType, _ := params["doc_type"].(string)
	level, _ := params["level"].(string)
	return HandleWriting(topic, docType, level), nil
}
