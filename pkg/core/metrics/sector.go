package metrics

// sectorByCIK covers the tickers with a well-known sector. Others report none.
var sectorByCIK = map[string]string{
	"0000320193": "Technology",
	"0000789019": "Technology",
	"0001652044": "Technology",
	"0001018724": "Consumer Cyclical",
	"0001045810": "Technology",
	"0001326801": "Technology",
	"0001318605": "Consumer Cyclical",
	"0001067983": "Financial Services",
	"0001403161": "Financial Services",
	"0000019617": "Financial Services",
	"0000104169": "Consumer Defensive",
	"0001141391": "Financial Services",
	"0000080424": "Consumer Defensive",
	"0000200406": "Healthcare",
	"0000354950": "Consumer Cyclical",
	"0000070858": "Financial Services",
	"0001744489": "Communication Services",
	"0001065280": "Communication Services",
	"0000858877": "Technology",
	"0000050863": "Technology",
	"0000077476": "Consumer Defensive",
	"0000021344": "Consumer Defensive",
	"0000320187": "Consumer Cyclical",
}

// Sector returns the sector of a padded CIK, or "".
func Sector(cik string) string {
	return sectorByCIK[cik]
}
