package capability

import (
	"context"
	"fmt"
	"strings"
)

// PriceSource is the narrow view of the price feed the trader needs.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

type Trader struct {
	Feed PriceSource
}

// Handle answers a free-text trading question. Price questions about known
// coins hit the feed; anything else gets the guidance template.
func (t Trader) Handle(ctx context.Context, text string) string {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "قیمت") || strings.Contains(lowered, "price") {
		if symbol := detectSymbol(lowered); symbol != "" {
			price, err := t.Feed.Price(ctx, symbol)
			if err != nil {
				return fmt.Sprintf("خطا در دریافت قیمت %s.", symbol)
			}
			return formatPrice(symbol, price)
		}
	}
	return "📊 برای تحلیل دقیق‌تر، لطفاً جفت ارز مورد نظر را اعلام کنید. من می‌توانم قیمت‌های لحظه‌ای را از صرافی‌های جهانی استخراج کنم."
}

// Quote answers the reply to the symbol prompt. Known coin names and
// bare tickers hit the feed, with feed errors surfaced to the user;
// anything longer is treated as a free-text trading question and handed
// to Handle.
func (t Trader) Quote(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	symbol := detectSymbol(strings.ToLower(trimmed))
	if symbol == "" && isTicker(trimmed) {
		symbol = strings.ToUpper(trimmed)
	}
	if symbol == "" {
		return t.Handle(ctx, trimmed)
	}
	price, err := t.Feed.Price(ctx, symbol)
	if err != nil {
		return fmt.Sprintf("خطا در دریافت قیمت %s.", symbol)
	}
	return formatPrice(symbol, price)
}

// isTicker matches short all-letter ASCII strings like "BTC" or "doge".
func isTicker(s string) bool {
	if len(s) < 2 || len(s) > 6 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func detectSymbol(lowered string) string {
	switch {
	case strings.Contains(lowered, "بیت") || strings.Contains(lowered, "btc") || strings.Contains(lowered, "bitcoin"):
		return "BTC"
	case strings.Contains(lowered, "اتریوم") || strings.Contains(lowered, "eth"):
		return "ETH"
	default:
		return ""
	}
}

func formatPrice(symbol string, price float64) string {
	switch symbol {
	case "BTC":
		return fmt.Sprintf("📈 قیمت لحظه‌ای بیت‌کوین: $%.2f", price)
	case "ETH":
		return fmt.Sprintf("💎 قیمت لحظه‌ای اتریوم: $%.2f", price)
	default:
		return fmt.Sprintf("📈 قیمت لحظه‌ای %s: $%.2f", symbol, price)
	}
}

type PriceTool struct {
	Feed PriceSource
}

func (PriceTool) Name() string { return "get_crypto_price" }

func (PriceTool) Description() string {
	return "Fetches the current USDT spot price of a cryptocurrency from the exchange. Use when the user asks for a coin price."
}

func (PriceTool) ParameterSchema() string {
	return `{"type":"object","properties":{"symbol":{"type":"string","description":"Base symbol, e.g. BTC or ETH."}},"required":["symbol"]}`
}

func (p PriceTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	symbol, _ := params["symbol"].(string)
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("missing symbol")
	}
	price, err := p.Feed.Price(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("price lookup for %s: %w", symbol, err)
	}
	return formatPrice(symbol, price), nil
}
