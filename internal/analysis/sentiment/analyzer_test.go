package sentiment

import (
	"math"
	"testing"

	"github.com/skalibog/bfsd/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestFundingComponentLinearInsideThreshold(t *testing.T) {
	assert := assert.New(t)

	for r := -0.05; r <= 0.05; r += 0.0025 {
		assert.Equal((r/0.05)*-5, FundingComponent(r), "rate %v", r)
	}
	assert.Equal(-5.0, FundingComponent(0.05))
	assert.Equal(5.0, FundingComponent(-0.05))
	assert.Equal(0.0, FundingComponent(0))
}

func TestFundingComponentClampedOutsideThreshold(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(-5.0, FundingComponent(0.0500001))
	assert.Equal(-5.0, FundingComponent(0.75))
	assert.Equal(5.0, FundingComponent(-0.0500001))
	assert.Equal(5.0, FundingComponent(-3))
}

func TestScoreAlwaysBounded(t *testing.T) {
	rates := []float64{-100, -0.3, -0.05, -0.01, 0, 0.02, 0.05, 0.4, 100}
	values := []float64{0, 1, 1e9, 2e9, math.MaxFloat64}
	prevs := []Previous{
		{},
		{LastPrice: 100, LastOpenInterest: 1e9},
		{LastPrice: 1e12, LastOpenInterest: 0},
	}

	for _, r := range rates {
		for _, oi := range values {
			for _, price := range values {
				for _, prev := range prevs {
					s := Score(r, oi, price, prev)
					assert.GreaterOrEqual(t, s, MinScore)
					assert.LessOrEqual(t, s, MaxScore)
				}
			}
		}
	}
}

func TestFirstSampleIgnoresTrend(t *testing.T) {
	assert := assert.New(t)
	empty := Previous{}

	assert.Equal(0.0, TrendComponent(5e9, 70000, empty))
	assert.Equal(0.0, TrendComponent(0, 0, empty))
	assert.Equal(0.0, TrendComponent(5e9, 70000, Previous{LastPrice: 0, LastOpenInterest: 1}))
	assert.Equal(FundingComponent(0.01), Score(0.01, 5e9, 70000, empty))
}

func TestTrendComponentCombinations(t *testing.T) {
	assert := assert.New(t)
	prev := Previous{LastPrice: 100, LastOpenInterest: 1000}

	assert.Equal(3.0, TrendComponent(1100, 101, prev), "oi up, price up")
	assert.Equal(-3.0, TrendComponent(1100, 99, prev), "oi up, price down")
	assert.Equal(-3.0, TrendComponent(1100, 100, prev), "oi up, price flat")
	assert.Equal(0.0, TrendComponent(900, 101, prev), "oi down, price up")
	assert.Equal(0.0, TrendComponent(900, 99, prev), "oi down, price down")
	assert.Equal(0.0, TrendComponent(1000, 101, prev), "oi flat")
}

func TestScoreScenarioBTCUSDT(t *testing.T) {
	// первый тик: 0.0008 -> 0.08%, истории нет
	first := Score(0.08, 1.2e9, 65000, Previous{})
	assert.Equal(t, -5.0, first)

	// следующий тик: 0.0001 -> 0.01%, цена и OI выросли
	second := Score(0.01, 1.3e9, 66000, Previous{LastPrice: 65000, LastOpenInterest: 1.2e9})
	assert.InDelta(t, 2.0, second, 1e-9)
}

func TestAnalyzeBreakdown(t *testing.T) {
	assert := assert.New(t)
	snapshot := &models.MarketSnapshot{
		Symbol:             "ETHUSDT",
		MarkPrice:          3100,
		FundingRatePercent: -0.2,
		OpenInterest:       8e8,
	}

	res := Analyze(snapshot, Previous{LastPrice: 3000, LastOpenInterest: 7e8})

	assert.Equal("ETHUSDT", res.Symbol)
	assert.Equal(5.0, res.Funding)
	assert.Equal(3.0, res.Trend)
	assert.Equal(8.0, res.Score)
	assert.Equal(LabelBullish, res.Label)
	assert.Equal(3100.0, res.MarkPrice)
	assert.False(res.Timestamp.IsZero())
}

func TestLabel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(LabelBullish, Label(3))
	assert.Equal(LabelBearish, Label(-3))
	assert.Equal(LabelNeutral, Label(2.99))
	assert.Equal(LabelNeutral, Label(-1))
}
