package entity

// StrategyParams is the fixed parameter tuple of a strategy definition.
// MaxMktcap is expressed in 亿 (1e8 CNY); 0 means no cap.
type StrategyParams struct {
	VolumeMultiplier  float64 `json:"volume_multiplier"`
	MinChangeIncrease float64 `json:"min_change_increase"`
	MinTurnover       float64 `json:"min_turnover"`
	MaxMktcap         float64 `json:"max_mktcap"`
}

// StrategyDefinition is a named, parameterized rule evaluated by the scan
// service. Definitions are immutable once created.
type StrategyDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Params      StrategyParams `json:"params"`
}

// PredefinedStrategies returns the shipped strategy definitions. The slice is
// freshly allocated on every call so holders cannot mutate shared state.
func PredefinedStrategies() []StrategyDefinition {
	return []StrategyDefinition{
		{
			ID:          "volume_surge",
			Name:        "成交量倍增+涨幅加速",
			Description: "当日成交量≥前日2倍 + 当日涨幅-前日涨幅≥5% + 换手率≥5%",
			Params:      StrategyParams{VolumeMultiplier: 2.0, MinChangeIncrease: 5.0, MinTurnover: 5.0, MaxMktcap: 0},
		},
		{
			ID:          "small_cap_surge",
			Name:        "小盘股放量突破",
			Description: "总市值≤100亿 + 成交量≥前日3倍 + 涨幅加速≥3%",
			Params:      StrategyParams{VolumeMultiplier: 3.0, MinChangeIncrease: 3.0, MinTurnover: 3.0, MaxMktcap: 100},
		},
		{
			ID:          "strong_momentum",
			Name:        "强势动能股",
			Description: "成交量≥前日1.5倍 + 涨幅加速≥7% + 换手率≥8%",
			Params:      StrategyParams{VolumeMultiplier: 1.5, MinChangeIncrease: 7.0, MinTurnover: 8.0, MaxMktcap: 0},
		},
		{
			ID:          "conservative",
			Name:        "稳健放量",
			Description: "成交量≥前日1.5倍 + 涨幅加速≥2% + 换手率≥3%",
			Params:      StrategyParams{VolumeMultiplier: 1.5, MinChangeIncrease: 2.0, MinTurnover: 3.0, MaxMktcap: 0},
		},
	}
}

// ScanResult is the scan service's verdict for one (strategy, stock, day)
// triple, with the contributing metrics. Immutable once received.
type ScanResult struct {
	StockCode     string  `json:"stock_code"`
	StockName     string  `json:"stock_name"`
	Symbol        string  `json:"symbol"`
	TradeDate     string  `json:"trade_date"`
	Close         float64 `json:"close"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int64   `json:"volume"`
	Amount        float64 `json:"amount"`
	ChangePercent float64 `json:"change_percent"`
	TurnoverRatio float64 `json:"turnover_ratio"`
	PrevVolume    int64   `json:"prev_volume"`
	PrevChange    float64 `json:"prev_change_percent"`
	VolumeRatio   float64 `json:"volume_ratio"`
	Mktcap        float64 `json:"mktcap"`
}

// ChangeAcceleration is the day-over-day change in percent change, one of the
// scan result sort keys.
func (r ScanResult) ChangeAcceleration() float64 {
	return r.ChangePercent - r.PrevChange
}

// NumericField returns the named sort key for a scan result.
func (r ScanResult) NumericField(key string) float64 {
	switch key {
	case "change_acceleration":
		return r.ChangeAcceleration()
	case "volume_ratio":
		return r.VolumeRatio
	case "turnover_ratio":
		return r.TurnoverRatio
	case "close":
		return r.Close
	}
	return 0
}
