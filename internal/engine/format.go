package engine

import (
	"fmt"
	"strings"
	"time"
)

// MessageLimit is the largest single message the notification sink accepts.
// Discord caps content at 2000 characters; 1800 leaves headroom for the
// joining whitespace.
const MessageLimit = 1800

// MoneyGBPFirst formats a price pair with GBP leading when available.
func MoneyGBPFirst(eur, gbp *float64) string {
	switch {
	case gbp != nil && eur != nil:
		return fmt.Sprintf("£%.2f (€%.2f)", *gbp, *eur)
	case gbp != nil:
		return fmt.Sprintf("£%.2f", *gbp)
	case eur != nil:
		return fmt.Sprintf("€%.2f", *eur)
	default:
		return "n/a"
	}
}

// FormatAlert renders one alert record as a Discord message block.
func FormatAlert(a Alert) string {
	rec := a.Record
	tag := fmt.Sprintf("%s #%s · %s · x%d", strings.ToUpper(rec.Set), rec.CollectorNumber, rec.Finish, rec.Quantity)
	moneyNow := MoneyGBPFirst(rec.PriceEUR, rec.PriceGBP)
	moneyPrev := MoneyGBPFirst(&a.PrevEUR, a.PrevGBP)

	var links []string
	for _, u := range []string{rec.ScryfallURI, rec.CardmarketURL} {
		if u != "" {
			links = append(links, u)
		}
	}
	linkBlock := strings.Join(links, "\n")

	deltaGBP := "n/a"
	if a.DeltaGBP != nil {
		deltaGBP = fmt.Sprintf("%+.2f", *a.DeltaGBP)
	}

	risk := rec.Risk
	if risk == "" {
		risk = "?"
	}

	switch a.Category {
	case CategorySpike:
		return fmt.Sprintf("📈 **PRICE SPIKE**\n**%s** (%s)\nYesterday: %s\nToday: %s (**%+.0f%%**, Δ€%+.2f)\nRisk: %s\n%s",
			rec.Name, tag, moneyPrev, moneyNow, a.Pct, a.DeltaEUR, risk, linkBlock)
	case CategoryDip:
		return fmt.Sprintf("📉 **PRICE DIP**\n**%s** (%s)\nYesterday: %s\nToday: %s (**%+.0f%%**, Δ€%+.2f)\nRisk: %s\n%s",
			rec.Name, tag, moneyPrev, moneyNow, a.Pct, a.DeltaEUR, risk, linkBlock)
	case CategorySell:
		return fmt.Sprintf("💰 **SELL CANDIDATE**\n**%s** (%s)\nNow: %s (Δ£%s, %+.0f%%)\nRisk: %s\n%s",
			rec.Name, tag, moneyNow, deltaGBP, a.Pct, risk, linkBlock)
	case CategoryBuy:
		return fmt.Sprintf("🛒 **BUY-MORE SIGNAL**\n**%s** (%s)\nNow: %s (Δ£%s, %+.0f%%)\nRisk: %s\n%s",
			rec.Name, tag, moneyNow, deltaGBP, a.Pct, risk, linkBlock)
	case CategoryTrendSpike:
		return fmt.Sprintf("📊 **TREND SPIKE**\n**%s** (%s)\nNow: %s\nAvg (%d pts): %s (**%+.0f%%**)\nRisk: %s\n%s",
			rec.Name, tag, moneyNow, a.TrendPoints, MoneyGBPFirst(a.AvgEUR, a.AvgGBP), a.PctVsAvg, risk, linkBlock)
	case CategoryTrendDip:
		return fmt.Sprintf("📉 **TREND DIP**\n**%s** (%s)\nNow: %s\nAvg (%d pts): %s (**%+.0f%%**)\nRisk: %s\n%s",
			rec.Name, tag, moneyNow, a.TrendPoints, MoneyGBPFirst(a.AvgEUR, a.AvgGBP), a.PctVsAvg, risk, linkBlock)
	}
	return ""
}

// Header builds the leading line of every notification batch.
func Header(nowLocal time.Time, tzName string, rate *float64) string {
	fxLine := "FX: unavailable"
	if rate != nil {
		fxLine = fmt.Sprintf("FX: 1 EUR = %.4f GBP", *rate)
	}
	return fmt.Sprintf("🧾 MTG price watch — %s (%s)\n%s", nowLocal.Format("2006-01-02 15:04"), tzName, fxLine)
}

// ChunkRecords packs formatted records into messages that stay under limit,
// always splitting between whole records. A single record longer than the
// limit is sent on its own rather than truncated.
func ChunkRecords(records []string, limit int) []string {
	var messages []string
	var msg string
	for _, r := range records {
		if msg != "" && len(msg)+len(r)+2 > limit {
			messages = append(messages, msg)
			msg = r
			continue
		}
		if msg == "" {
			msg = r
		} else {
			msg = msg + "\n\n" + r
		}
	}
	if msg != "" {
		messages = append(messages, msg)
	}
	return messages
}
