package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"github.com/skalibog/bfsd/internal/config"
	"github.com/skalibog/bfsd/pkg/models"
	"golang.org/x/sync/errgroup"
)

// OpenInterestPeriod размер исторического бакета открытого интереса
const OpenInterestPeriod = "5m"

const testnetBaseURL = "https://testnet.binancefuture.com"

var hundred = decimal.NewFromInt(100)

// BinanceClient клиент для публичных рыночных данных фьючерсов Binance
type BinanceClient struct {
	futures *futures.Client
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig) (*BinanceClient, error) {
	futuresClient := futures.NewClient(cfg.APIKey, cfg.APISecret)

	switch {
	case cfg.BaseURL != "":
		futuresClient.BaseURL = cfg.BaseURL
	case cfg.Testnet:
		futuresClient.BaseURL = testnetBaseURL
	}

	if cfg.TimeoutSeconds > 0 {
		futuresClient.HTTPClient = &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}
	}

	return &BinanceClient{
		futures: futuresClient,
	}, nil
}

// GetFundingRate получает текущую ставку финансирования и маркировочную цену
func (c *BinanceClient) GetFundingRate(ctx context.Context, symbol string) (*models.FundingRate, error) {
	rates, err := c.futures.NewPremiumIndexService().
		Symbol(symbol).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ставки финансирования: %w", err)
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("не найдены данные о ставке финансирования для %s", symbol)
	}

	rate, err := decimal.NewFromString(rates[0].LastFundingRate)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора ставки финансирования %q: %w", rates[0].LastFundingRate, err)
	}

	markPrice, err := decimal.NewFromString(rates[0].MarkPrice)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора маркировочной цены %q: %w", rates[0].MarkPrice, err)
	}

	return &models.FundingRate{
		Symbol:    symbol,
		Rate:      rate.InexactFloat64(),
		Percent:   rate.Mul(hundred).InexactFloat64(),
		MarkPrice: markPrice.InexactFloat64(),
		Timestamp: time.Now(),
	}, nil
}

// GetOpenInterest получает открытый интерес в долларах за последний пятиминутный бакет
func (c *BinanceClient) GetOpenInterest(ctx context.Context, symbol string) (*models.OpenInterest, error) {
	stats, err := c.futures.NewOpenInterestStatisticsService().
		Symbol(symbol).
		Period(OpenInterestPeriod).
		Limit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения открытого интереса: %w", err)
	}

	if len(stats) == 0 {
		return nil, fmt.Errorf("не найдены данные об открытом интересе для %s", symbol)
	}

	value, err := decimal.NewFromString(stats[0].SumOpenInterestValue)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора открытого интереса %q: %w", stats[0].SumOpenInterestValue, err)
	}

	timestamp := time.Now()
	if stats[0].Timestamp > 0 {
		timestamp = time.UnixMilli(stats[0].Timestamp)
	}

	return &models.OpenInterest{
		Symbol:    symbol,
		Value:     value.InexactFloat64(),
		Period:    OpenInterestPeriod,
		Timestamp: timestamp,
	}, nil
}

// Fetch параллельно запрашивает ставку финансирования и открытый интерес.
// Ошибка любого из запросов отменяет весь цикл.
func (c *BinanceClient) Fetch(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	var (
		funding *models.FundingRate
		oi      *models.OpenInterest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		funding, err = c.GetFundingRate(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		oi, err = c.GetOpenInterest(gctx, symbol)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка получения данных для %s: %w", symbol, err)
	}

	return &models.MarketSnapshot{
		Symbol:             symbol,
		MarkPrice:          funding.MarkPrice,
		FundingRate:        funding.Rate,
		FundingRatePercent: funding.Percent,
		OpenInterest:       oi.Value,
		FetchedAt:          time.Now(),
	}, nil
}
