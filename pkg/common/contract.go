package common

import "fmt"

// Contract identifies an instrument on the execution side. It is comparable
// and safe to use as a map key.
type Contract struct {
	Symbol       string `json:"symbol"`
	SecurityType string `json:"security_type"`
	Exchange     string `json:"exchange"`
}

func (c Contract) String() string {
	return fmt.Sprintf("%s/%s@%s", c.Symbol, c.SecurityType, c.Exchange)
}

// ContractTickerMapper translates between execution-side contracts and
// data-side tickers.
type ContractTickerMapper interface {
	ToTicker(contract Contract) Ticker
	ToContract(ticker Ticker) Contract
}

// SymbolMapper maps a contract to a ticker using the bare symbol. Suitable for
// single-exchange universes where the symbol alone is unambiguous.
type SymbolMapper struct {
	SecurityType string
	Exchange     string
}

func NewSymbolMapper(securityType, exchange string) SymbolMapper {
	return SymbolMapper{SecurityType: securityType, Exchange: exchange}
}

func (m SymbolMapper) ToTicker(contract Contract) Ticker {
	return Ticker(contract.Symbol)
}

func (m SymbolMapper) ToContract(ticker Ticker) Contract {
	return Contract{Symbol: string(ticker), SecurityType: m.SecurityType, Exchange: m.Exchange}
}
