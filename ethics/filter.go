// Package ethics is the pre-routing safety check: a single-turn syntactic
// test of the message body against a fixed table of category patterns. It
// carries no context and no state; a rejected message never reaches the
// model backend.
package ethics

import (
	"fmt"
	"regexp"
	"strings"
)

type Pattern struct {
	Name     string
	Category string
	Re       string
}

// defaultPatterns groups the built-in forbidden patterns by category. The
// table is matched against the lower-cased message body.
var defaultPatterns = []Pattern{
	{Name: "scam", Category: "fraud", Re: `\b(scam|phishing|ponzi)\b`},
	{Name: "counterfeit", Category: "fraud", Re: `\b(counterfeit|fake\s+(id|passport|document))\b`},
	{Name: "fraud_fa", Category: "fraud", Re: `کلاهبرداری|جعل\s*(مدرک|سند)`},

	{Name: "threat", Category: "harassment", Re: `\b(kill|murder|hurt)\s+(him|her|them|someone)\b`},
	{Name: "stalk", Category: "harassment", Re: `\b(stalk|dox+)\b`},
	{Name: "threat_fa", Category: "harassment", Re: `تهدید\s*به\s*قتل|آزار\s*و\s*اذیت`},

	{Name: "hacking", Category: "security", Re: `\b(hack|crack|keylogger|backdoor)\b`},
	{Name: "bypass", Category: "security", Re: `\b(bypass|break\s+into)\s+\w*\s*(password|account|login|security)\b`},
	{Name: "hacking_fa", Category: "security", Re: `هک|کرک|نفوذ\s*به\s*(حساب|سیستم)`},

	{Name: "weapons", Category: "illegal_goods", Re: `\b(build|make|buy)\s+(a\s+)?(bomb|gun|weapon|explosive)\b`},
	{Name: "drugs", Category: "illegal_goods", Re: `\b(buy|sell|cook)\s+\w*\s*(drugs|meth|heroin|cocaine)\b`},
	{Name: "weapons_fa", Category: "illegal_goods", Re: `ساخت\s*بمب|خرید\s*اسلحه`},
	{Name: "drugs_fa", Category: "illegal_goods", Re: `مواد\s*مخدر`},

	{Name: "script_tag", Category: "injection", Re: `<\s*script\b`},
	{Name: "sql", Category: "injection", Re: `(?:'|")\s*(or|and)\s+\d+\s*=\s*\d+|;\s*drop\s+table`},
	{Name: "template", Category: "injection", Re: `\{\{.*\}\}|\$\{.*\}`},
}

type compiledPattern struct {
	name     string
	category string
	re       *regexp.Regexp
}

type Filter struct {
	patterns []compiledPattern
}

// New compiles the built-in table plus any extra patterns. A broken extra
// pattern is a configuration error and fails construction.
func New(extra ...Pattern) (*Filter, error) {
	all := make([]Pattern, 0, len(defaultPatterns)+len(extra))
	all = append(all, defaultPatterns...)
	all = append(all, extra...)

	f := &Filter{patterns: make([]compiledPattern, 0, len(all))}
	for _, p := range all {
		re, err := regexp.Compile(p.Re)
		if err != nil {
			return nil, fmt.Errorf("ethics pattern %q: %w", p.Name, err)
		}
		f.patterns = append(f.patterns, compiledPattern{name: p.Name, category: p.Category, re: re})
	}
	return f, nil
}

func MustNew(extra ...Pattern) *Filter {
	f, err := New(extra...)
	if err != nil {
		panic(err)
	}
	return f
}

// Allowed reports whether the message may continue down the pipeline.
// Empty and whitespace-only input fails closed.
func (f *Filter) Allowed(text string) bool {
	_, blocked := f.Match(text)
	return !blocked
}

// Match returns the category of the first pattern the text trips, if any.
func (f *Filter) Match(text string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return "empty", true
	}
	for _, p := range f.patterns {
		if p.re.MatchString(lowered) {
			return p.category, true
		}
	}
	return "", false
}
