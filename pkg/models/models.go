package models

import (
	"time"
)

// FundingRate представляет ставку финансирования вместе с маркировочной ценой
type FundingRate struct {
	Symbol    string
	Rate      float64
	Percent   float64
	MarkPrice float64
	Timestamp time.Time
}

// OpenInterest представляет открытый интерес в долларах за последний период
type OpenInterest struct {
	Symbol    string
	Value     float64
	Period    string
	Timestamp time.Time
}

// MarketSnapshot объединяет данные одного цикла опроса
type MarketSnapshot struct {
	Symbol             string
	MarkPrice          float64
	FundingRate        float64
	FundingRatePercent float64
	OpenInterest       float64
	FetchedAt          time.Time
}

// Sample одна точка для графиков
type Sample struct {
	SentimentScore     float64
	FundingRatePercent float64
	OpenInterest       float64
}

// SentimentResult представляет оценку настроения и ее составляющие
type SentimentResult struct {
	Symbol    string
	Score     float64
	Funding   float64
	Trend     float64
	Label     string
	MarkPrice float64
	Timestamp time.Time
}
