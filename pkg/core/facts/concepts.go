package facts

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
)

// Kind separates cumulative flow concepts from balance-sheet snapshots.
type Kind string

const (
	Flow     Kind = "flow"
	Snapshot Kind = "snapshot"
)

// Concept maps one economic line item onto the tag names it is reported
// under.
//
// Aliases of an ordinary concept are merged into one series. When
// FirstAvailable is set the aliases form a priority chain instead and only the
// first alias with data is used.
type Concept struct {
	Key            string   `json:"key"`
	Label          string   `json:"label"`
	Aliases        []string `json:"aliases"`
	Unit           Unit     `json:"unit"`
	Kind           Kind     `json:"kind"`
	FirstAvailable bool     `json:"firstAvailable,omitempty"`
}

// Keys of the concepts in DefaultConcepts.
const (
	Revenue                  = "revenue"
	CostOfRevenue            = "costOfRevenue"
	GrossProfit              = "grossProfit"
	OperatingExpenses        = "operatingExpenses"
	RDExpense                = "rdExpense"
	SGAExpense               = "sgaExpense"
	OperatingIncome          = "operatingIncome"
	InterestExpense          = "interestExpense"
	IncomeTaxExpense         = "incomeTaxExpense"
	DepreciationAmortization = "depreciationAmortization"
	EBITDA                   = "ebitda"
	NetIncome                = "netIncome"

	TotalAssets            = "totalAssets"
	CurrentAssets          = "currentAssets"
	Cash                   = "cash"
	AccountsReceivable     = "accountsReceivable"
	Inventory              = "inventory"
	PropertyPlantEquipment = "propertyPlantEquipment"
	TotalLiabilities       = "totalLiabilities"
	CurrentLiabilities     = "currentLiabilities"
	ShortTermDebt          = "shortTermDebt"
	LongTermDebt           = "longTermDebt"
	AccountsPayable        = "accountsPayable"
	StockholdersEquity     = "stockholdersEquity"
	LiabilitiesAndEquity   = "liabilitiesAndEquity"
	SharesOutstanding      = "sharesOutstanding"

	OperatingCashFlow = "operatingCashFlow"
	InvestingCashFlow = "investingCashFlow"
	FinancingCashFlow = "financingCashFlow"
	Capex             = "capex"
	DividendsPaid     = "dividendsPaid"
	StockRepurchases  = "stockRepurchases"
)

// ConceptTable is a lookup of concepts by key.
type ConceptTable map[string]Concept

// Get returns the concept for key.
func (t ConceptTable) Get(key string) (Concept, bool) {
	c, ok := t[key]
	return c, ok
}

func flow(key, label string, aliases ...string) Concept {
	return Concept{Key: key, Label: label, Aliases: aliases, Unit: USD, Kind: Flow}
}

func snapshot(key, label string, aliases ...string) Concept {
	return Concept{Key: key, Label: label, Aliases: aliases, Unit: USD, Kind: Snapshot}
}

func chain(c Concept) Concept {
	c.FirstAvailable = true
	return c
}

// DefaultConcepts returns the built-in concept table.
func DefaultConcepts() ConceptTable {
	list := []Concept{
		flow(Revenue, "Revenue",
			"RevenueFromContractWithCustomerExcludingAssessedTax", "Revenues", "SalesRevenueNet"),
		flow(CostOfRevenue, "Cost of revenue", "CostOfRevenue", "CostOfGoodsAndServicesSold"),
		flow(GrossProfit, "Gross profit", "GrossProfit"),
		flow(OperatingExpenses, "Operating expenses", "OperatingExpenses"),
		flow(RDExpense, "Research and development", "ResearchAndDevelopmentExpense"),
		flow(SGAExpense, "Selling, general and administrative", "SellingGeneralAndAdministrativeExpense"),
		flow(OperatingIncome, "Operating income", "OperatingIncomeLoss"),
		flow(InterestExpense, "Interest expense", "InterestExpense"),
		flow(IncomeTaxExpense, "Income tax expense", "IncomeTaxExpenseBenefit"),
		flow(DepreciationAmortization, "Depreciation and amortization", "DepreciationDepletionAndAmortization"),
		flow(EBITDA, "EBITDA", "EarningsBeforeInterestTaxesDepreciationAndAmortization"),
		flow(NetIncome, "Net income", "NetIncomeLoss", "ProfitLoss"),

		snapshot(TotalAssets, "Total assets", "Assets"),
		snapshot(CurrentAssets, "Current assets", "AssetsCurrent"),
		chain(snapshot(Cash, "Cash and equivalents", "CashAndCashEquivalentsAtCarryingValue", "Cash")),
		snapshot(AccountsReceivable, "Accounts receivable", "AccountsReceivableNetCurrent"),
		snapshot(Inventory, "Inventory", "InventoryNet"),
		snapshot(PropertyPlantEquipment, "Property, plant and equipment", "PropertyPlantAndEquipmentNet"),
		snapshot(TotalLiabilities, "Total liabilities", "Liabilities"),
		snapshot(CurrentLiabilities, "Current liabilities", "LiabilitiesCurrent"),
		chain(snapshot(ShortTermDebt, "Short-term debt", "LongTermDebtCurrent", "ShortTermBorrowings", "DebtCurrent")),
		chain(snapshot(LongTermDebt, "Long-term debt", "LongTermDebtNoncurrent", "LongTermDebt")),
		snapshot(AccountsPayable, "Accounts payable", "AccountsPayableCurrent"),
		snapshot(StockholdersEquity, "Stockholders' equity", "StockholdersEquity"),
		snapshot(LiabilitiesAndEquity, "Total liabilities and equity", "LiabilitiesAndStockholdersEquity"),
		{
			Key:            SharesOutstanding,
			Label:          "Shares outstanding",
			Aliases:        []string{"CommonStockSharesOutstanding", "CommonStockSharesIssued"},
			Unit:           Shares,
			Kind:           Snapshot,
			FirstAvailable: true,
		},

		flow(OperatingCashFlow, "Operating cash flow", "NetCashProvidedByUsedInOperatingActivities"),
		flow(InvestingCashFlow, "Investing cash flow", "NetCashProvidedByUsedInInvestingActivities"),
		flow(FinancingCashFlow, "Financing cash flow", "NetCashProvidedByUsedInFinancingActivities"),
		flow(Capex, "Capital expenditure", "PaymentsToAcquirePropertyPlantAndEquipment"),
		flow(DividendsPaid, "Dividends paid", "PaymentsOfDividends"),
		flow(StockRepurchases, "Share repurchases", "PaymentsForRepurchaseOfCommonStock"),
	}

	table := make(ConceptTable, len(list))
	for _, c := range list {
		table[c.Key] = c
	}
	return table
}

// Resolve builds the merged series of c from src.
func Resolve(src Source, c Concept) Series {
	if src == nil {
		return nil
	}
	unit := c.Unit
	if unit == "" {
		unit = USD
	}
	if !c.FirstAvailable {
		return MergeConcepts(src, c.Aliases, unit)
	}
	for _, alias := range c.Aliases {
		if values := src.Facts(alias, unit); len(values) > 0 {
			return Merge(values)
		}
	}
	return nil
}

// LoadConcepts reads an HJSON list of concepts from path and lays it over the
// defaults. Entries replace the default with the same key.
func LoadConcepts(path string) (ConceptTable, error) {
	table := DefaultConcepts()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read concepts file: %w", err)
	}

	var overrides []Concept
	if err := hjson.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse concepts file %s: %w", path, err)
	}

	for i, c := range overrides {
		if c.Key == "" || len(c.Aliases) == 0 {
			return nil, fmt.Errorf("concept %d in %s: key and aliases are required", i, path)
		}
		if c.Unit == "" {
			c.Unit = USD
		}
		if c.Kind == "" {
			c.Kind = Flow
		}
		table[c.Key] = c
	}
	return table, nil
}
