package capability

import (
	"context"
	"fmt"
	"strings"
)

var legalCaseTypes = []string{"طلاق", "حضانت", "کارگری", "اجاره"}

var legalTemplates = map[string]string{
	"طلاق":   "لایحه طلاق: شرح دادخواست، مدارک سجلی، و روند ثبت در دفاتر خدمات قضایی.",
	"حضانت":  "لایحه حضانت: معیارهای مصلحت طفل، سوابق نگهداری، و مستندات درآمدی.",
	"کارگری": "شکایت کارگری: محاسبه سنوات و عیدی، مهلت طرح شکایت در اداره کار.",
	"اجاره":  "دعوای اجاره: تخلیه، ودیعه، و اجور معوقه بر اساس قانون روابط موجر و مستأجر.",
}

// HandleLegal produces the legal-template stub for a case type.
func HandleLegal(caseType string) string {
	caseType = strings.TrimSpace(caseType)
	body, ok := legalTemplates[caseType]
	if !ok {
		return fmt.Sprintf(
			"⚖️ موضوع «%s» در قالب‌های آماده نیست.\n"+
				"موضوع‌های پشتیبانی‌شده: %s.\n"+
				"توضیح پرونده را بنویسید تا پیش‌نویس کلی آماده کنم.",
			caseType, strings.Join(legalCaseTypes, "، "))
	}
	return fmt.Sprintf(
		"⚖️ **راهنمای حقوقی — %s**\n\n%s\n\n"+
			"⚠️ این متن جایگزین مشاوره وکیل نیست.",
		caseType, body)
}

type LegalTool struct{}

func (LegalTool) Name() string { return "legal_template" }

func (LegalTool) Description() string {
	return "Returns a template overview for Iranian legal case types (divorce, custody, labor, rent). Use when the user asks for legal guidance."
}

func (LegalTool) ParameterSchema() string {
	return `{"type":"object","properties":{"case_type":{"type":"string","description":"One of: طلاق, حضانت, کارگری, اجاره"}},"required":["case_type"]}`
}

func (LegalTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	caseType, _ := params["case_type"].(string)
	return HandleLegal(caseType), nil
}
