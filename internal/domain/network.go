package domain

// NetworkStats holds the headline network numbers.
type NetworkStats struct {
	TPS                int64   `json:"tps"`
	BlockHeight        int64   `json:"blockHeight"`
	SOLPrice           float64 `json:"solPrice"`
	Validators         int     `json:"validators"`
	PeakTPS            int64   `json:"peakTps"`
	HourlyTransactions int64   `json:"hourlyTransactions"`
	TotalAnalyzed      int64   `json:"totalAnalyzed"`
}

// Wallet is a large holder shown in the whale list.
type Wallet struct {
	Address        string  `json:"address"`
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`  // SOL
	Value          float64 `json:"usdValue"` // balance in the dashboard currency
	ProgramDerived bool    `json:"programDerived"`
}

// Token is a popular SPL token with its circulating supply.
type Token struct {
	Mint            string  `json:"address"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Supply          float64 `json:"supply"`
	FormattedSupply string  `json:"formattedSupply"`
}
