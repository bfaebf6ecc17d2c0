package capability

import (
	"context"
	"fmt"
	"strings"
)

// The media handlers are genuinely unimplemented stubs: they acknowledge the
// request with canned text and never touch a real generation pipeline.

// HandleImage acknowledges an image-generation request.
func HandleImage(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = "بدون توضیح"
	}
	return fmt.Sprintf("🖼️ درخواست تولید تصویر برای «%s» دریافت شد. این قابلیت هنوز به سرویس تولید تصویر متصل نیست.", prompt)
}

// HandleVoice acknowledges a text-to-speech request.
func HandleVoice(text string) string {
	if strings.TrimSpace(text) == "" {
		return "❌ متنی برای تبدیل به صدا ارسال نشده است."
	}
	return "🎙️ تبدیل متن به صدا هنوز فعال نیست؛ پاسخ به صورت متنی ارسال می‌شود."
}

type ImageTool struct{}

func (ImageTool) Name() string { return "generate_image" }

func (ImageTool) Description() string {
	return "Acknowledges an image generation request. The generation backend is not wired; the tool only confirms receipt."
}

func (ImageTool) ParameterSchema() string {
	return `{"type":"object","properties":{"prompt":{"type":"string"}},"required":["prompt"]}`
}

func (ImageTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	prompt, _ := params["prompt"].(string)
	return HandleImage(prompt), nil
}

type VoiceTool struct{}

func (VoiceTool) Name() string { return "speak_text" }

func (VoiceTool) Description() string {
	return "Acknowledges a text-to-speech request. The TTS backend is not wired; the answer stays textual."
}

func (VoiceTool) ParameterSchema() string {
	return `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`
}

func (VoiceTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, _ := params["text"].(string)
	return HandleVoice(text), nil
}
