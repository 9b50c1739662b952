package entity

// StockRecord is one listed stock as served by the market data service.
// Trading fields are pointers: they are absent until the daily snapshot for
// the stock has been fetched and merged in.
type StockRecord struct {
	TsCode        string   `json:"ts_code"`
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Pinyin        string   `json:"pinyin"`
	Trade         *float64 `json:"trade"`
	ChangePercent *float64 `json:"changepercent"`
	Mktcap        *float64 `json:"mktcap"`
	TurnoverRatio *float64 `json:"turnoverratio"`
}

// MergeTradingFields copies the trading fields of snap into the record,
// leaving identity fields untouched. Absent snapshot fields do not clear
// previously merged values.
func (s *StockRecord) MergeTradingFields(snap StockRecord) {
	if snap.Trade != nil {
		s.Trade = snap.Trade
	}
	if snap.ChangePercent != nil {
		s.ChangePercent = snap.ChangePercent
	}
	if snap.Mktcap != nil {
		s.Mktcap = snap.Mktcap
	}
	if snap.TurnoverRatio != nil {
		s.TurnoverRatio = snap.TurnoverRatio
	}
}

// NumericField returns the named trading field for sort comparisons. Missing
// values compare as 0; rendering the absence is the display layer's job.
func (s StockRecord) NumericField(key string) float64 {
	var v *float64
	switch key {
	case "trade":
		v = s.Trade
	case "changepercent":
		v = s.ChangePercent
	case "mktcap":
		v = s.Mktcap
	case "turnoverratio":
		v = s.TurnoverRatio
	}
	if v == nil {
		return 0
	}
	return *v
}

// OHLC is one day of price history for a stock.
type OHLC struct {
	StockCode string  `json:"stock_code"`
	StockName string  `json:"stock_name"`
	Exchange  string  `json:"exchange"`
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	Amount    float64 `json:"amount"`
}

// MoverRecord is one entry of a top gainers/losers ranking.
type MoverRecord struct {
	StockCode     string  `json:"stock_code"`
	StockName     string  `json:"stock_name"`
	Exchange      string  `json:"exchange"`
	TradeDate     string  `json:"trade_date"`
	Open          float64 `json:"open"`
	Close         float64 `json:"close"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	PrevClose     float64 `json:"prev_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// FilteredStock is one stock matched by the multi-day change filter, with its
// trigger dates across the window.
type FilteredStock struct {
	StockCode    string   `json:"stock_code"`
	StockName    string   `json:"stock_name"`
	Exchange     string   `json:"exchange"`
	MaxChange    float64  `json:"max_change_percent"`
	MinChange    float64  `json:"min_change_percent"`
	AvgChange    float64  `json:"avg_change_percent"`
	DaysCount    int      `json:"days_count"`
	LatestPrice  float64  `json:"latest_price"`
	LatestDate   string   `json:"latest_date"`
	Mktcap       float64  `json:"mktcap"`
	TriggerDates []string `json:"trigger_dates"`
}

// NumericField returns the named sort key for a filtered stock.
func (f FilteredStock) NumericField(key string) float64 {
	switch key {
	case "max_change":
		return f.MaxChange
	case "trigger_count":
		return float64(len(f.TriggerDates))
	case "latest_price":
		return f.LatestPrice
	case "mktcap":
		return f.Mktcap
	}
	return 0
}

// MarketStats is the day-level market summary.
type MarketStats struct {
	TotalStocks int    `json:"total_stocks"`
	Gainers     int    `json:"gainers"`
	Losers      int    `json:"losers"`
	Tables      int    `json:"tables"`
	Date        string `json:"date"`
}
