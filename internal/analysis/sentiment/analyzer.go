// internal/analysis/sentiment/analyzer.go
package sentiment

import (
	"math"
	"time"

	"github.com/skalibog/bfsd/pkg/models"
)

const (
	// Порог ставки финансирования в процентах, после которого вклад максимален
	FundingThresholdPercent = 0.05
	FundingWeight           = 5.0
	TrendWeight             = 3.0

	MinScore = -10.0
	MaxScore = 10.0

	// Границы для текстовой метки
	BullishThreshold = 3.0
	BearishThreshold = -3.0
)

const (
	LabelBullish = "БЫЧИЙ"
	LabelBearish = "МЕДВЕЖИЙ"
	LabelNeutral = "НЕЙТРАЛЬНО"
)

// Previous последние наблюдавшиеся значения по символу.
// LastPrice == 0 означает, что истории еще нет.
type Previous struct {
	LastPrice        float64
	LastOpenInterest float64
}

// Score возвращает оценку настроения в диапазоне [-10, 10]
func Score(fundingRatePercent, openInterest, price float64, prev Previous) float64 {
	score := FundingComponent(fundingRatePercent) + TrendComponent(openInterest, price, prev)
	return clamp(score, MinScore, MaxScore)
}

// FundingComponent вклад ставки финансирования.
// Высокая положительная ставка: лонги платят шортам, медвежий сигнал.
// Внутри порога вклад линейный и непрерывен на его границах.
func FundingComponent(fundingRatePercent float64) float64 {
	switch {
	case fundingRatePercent > FundingThresholdPercent:
		return -FundingWeight
	case fundingRatePercent < -FundingThresholdPercent:
		return FundingWeight
	default:
		return (fundingRatePercent / FundingThresholdPercent) * -FundingWeight
	}
}

// TrendComponent вклад тренда открытого интереса относительно цены.
// Рост OI вместе с ценой подтверждает рост, рост OI при падающей цене
// подтверждает падение. Снижение OI (закрытие позиций) не учитывается.
func TrendComponent(openInterest, price float64, prev Previous) float64 {
	if prev.LastPrice <= 0 {
		return 0
	}

	oiUp := openInterest > prev.LastOpenInterest
	priceUp := price > prev.LastPrice

	switch {
	case oiUp && priceUp:
		return TrendWeight
	case oiUp && !priceUp:
		return -TrendWeight
	default:
		return 0
	}
}

// Analyze считает оценку по снимку рынка и раскладывает ее на составляющие
func Analyze(snapshot *models.MarketSnapshot, prev Previous) *models.SentimentResult {
	funding := FundingComponent(snapshot.FundingRatePercent)
	trend := TrendComponent(snapshot.OpenInterest, snapshot.MarkPrice, prev)
	score := clamp(funding+trend, MinScore, MaxScore)

	timestamp := snapshot.FetchedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return &models.SentimentResult{
		Symbol:    snapshot.Symbol,
		Score:     score,
		Funding:   funding,
		Trend:     trend,
		Label:     Label(score),
		MarkPrice: snapshot.MarkPrice,
		Timestamp: timestamp,
	}
}

// Label текстовая метка для оценки
func Label(score float64) string {
	if score >= BullishThreshold {
		return LabelBullish
	} else if score <= BearishThreshold {
		return LabelBearish
	}
	return LabelNeutral
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
