package chart

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/skalibog/bfsd/internal/state"
)

// Kind вид графика
type Kind int

const (
	SentimentScore Kind = iota
	FundingRate
	OpenInterest
)

// Style способ отрисовки ряда
type Style int

const (
	Line Style = iota
	Bar
)

// Spec статическое описание графика
type Spec struct {
	Kind  Kind
	Title string
	Style Style
	Color lipgloss.Color
	// Fill заливает область под линией
	Fill bool
	// FixedRange фиксирует ось Y на [YMin, YMax]
	FixedRange bool
	YMin       float64
	YMax       float64
	Series     func(st *state.SymbolState) []float64
}

// Specs три графика панели в порядке отображения
var Specs = []Spec{
	{
		Kind:       SentimentScore,
		Title:      "Оценка настроения",
		Style:      Line,
		Color:      lipgloss.Color("#2ECC71"),
		Fill:       true,
		FixedRange: true,
		YMin:       -10,
		YMax:       10,
		Series:     func(st *state.SymbolState) []float64 { return st.SentimentSeries },
	},
	{
		Kind:   FundingRate,
		Title:  "Ставка финансирования (%)",
		Style:  Bar,
		Color:  lipgloss.Color("#3498DB"),
		Fill:   true,
		Series: func(st *state.SymbolState) []float64 { return st.FundingSeries },
	},
	{
		Kind:   OpenInterest,
		Title:  "Открытый интерес (USD)",
		Style:  Line,
		Color:  lipgloss.Color("#F39C12"),
		Series: func(st *state.SymbolState) []float64 { return st.OpenInterestSeries },
	},
}

func (k Kind) String() string {
	switch k {
	case SentimentScore:
		return "sentiment"
	case FundingRate:
		return "funding"
	case OpenInterest:
		return "open_interest"
	default:
		return "unknown"
	}
}
