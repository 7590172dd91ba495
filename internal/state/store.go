package state

import (
	"time"

	"github.com/skalibog/bfsd/pkg/models"
)

// WindowSize максимальное число точек на графике
const WindowSize = 20

// TimeLayout формат подписи оси X
const TimeLayout = "15:04:05"

// SymbolState скользящие буферы одного символа.
// Все четыре ряда всегда одной длины и не длиннее окна.
type SymbolState struct {
	Timestamps         []string
	SentimentSeries    []float64
	FundingSeries      []float64
	OpenInterestSeries []float64

	LastOpenInterest float64
	LastPrice        float64
}

// Len количество точек в буфере
func (s *SymbolState) Len() int {
	return len(s.Timestamps)
}

// Clone глубокая копия состояния
func (s *SymbolState) Clone() SymbolState {
	return SymbolState{
		Timestamps:         append([]string(nil), s.Timestamps...),
		SentimentSeries:    append([]float64(nil), s.SentimentSeries...),
		FundingSeries:      append([]float64(nil), s.FundingSeries...),
		OpenInterestSeries: append([]float64(nil), s.OpenInterestSeries...),
		LastOpenInterest:   s.LastOpenInterest,
		LastPrice:          s.LastPrice,
	}
}

// Store хранит состояние всех выбранных символов.
// Синхронизация лежит на владельце (контроллере).
type Store struct {
	states map[string]*SymbolState
	window int
	now    func() time.Time
}

// NewStore создает хранилище с окном WindowSize
func NewStore() *Store {
	return NewStoreWithWindow(WindowSize)
}

// NewStoreWithWindow создает хранилище с заданным окном
func NewStoreWithWindow(window int) *Store {
	if window <= 0 {
		window = WindowSize
	}
	return &Store{
		states: make(map[string]*SymbolState),
		window: window,
		now:    time.Now,
	}
}

// Ensure создает пустое состояние для символа, если его еще нет
func (s *Store) Ensure(symbol string) *SymbolState {
	st, ok := s.states[symbol]
	if !ok {
		st = &SymbolState{}
		s.states[symbol] = st
	}
	return st
}

// Get возвращает состояние символа
func (s *Store) Get(symbol string) (*SymbolState, bool) {
	st, ok := s.states[symbol]
	return st, ok
}

// Snapshot возвращает копию состояния символа
func (s *Store) Snapshot(symbol string) (SymbolState, bool) {
	st, ok := s.states[symbol]
	if !ok {
		return SymbolState{}, false
	}
	return st.Clone(), true
}

// Symbols возвращает символы, для которых есть состояние
func (s *Store) Symbols() []string {
	symbols := make([]string, 0, len(s.states))
	for symbol := range s.states {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Remember запоминает последние цену и открытый интерес для сравнения на следующем цикле
func (s *Store) Remember(symbol string, price, openInterest float64) {
	st := s.Ensure(symbol)
	st.LastPrice = price
	st.LastOpenInterest = openInterest
}

// Append добавляет точку во все ряды и обрезает самую старую при переполнении окна
func (s *Store) Append(symbol string, sample models.Sample) {
	st := s.Ensure(symbol)

	st.Timestamps = append(st.Timestamps, s.now().Format(TimeLayout))
	st.SentimentSeries = append(st.SentimentSeries, sample.SentimentScore)
	st.FundingSeries = append(st.FundingSeries, sample.FundingRatePercent)
	st.OpenInterestSeries = append(st.OpenInterestSeries, sample.OpenInterest)

	if st.Len() > s.window {
		st.Timestamps = shift(st.Timestamps)
		st.SentimentSeries = shift(st.SentimentSeries)
		st.FundingSeries = shift(st.FundingSeries)
		st.OpenInterestSeries = shift(st.OpenInterestSeries)
	}
}

// shift удаляет первый элемент, копируя хвост в начало того же массива
func shift[T any](s []T) []T {
	if len(s) == 0 {
		return s
	}
	n := copy(s, s[1:])
	return s[:n]
}
