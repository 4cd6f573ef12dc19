package localcache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// cachedData is the msgpack layout of the blob; decimals and ids are stored as strings
type cachedData struct {
	Transactions []cachedTransaction `msgpack:"transactions"`
	Investments  []cachedInvestment  `msgpack:"investments"`
	Crypto       []cachedCrypto      `msgpack:"crypto"`
	Liabilities  []cachedLiability   `msgpack:"liabilities"`
	Snapshots    []cachedSnapshot    `msgpack:"snapshots"`
}

type cachedTransaction struct {
	ID          string    `msgpack:"id"`
	Kind        string    `msgpack:"type"`
	Category    string    `msgpack:"category"`
	Amount      string    `msgpack:"amount"`
	Date        string    `msgpack:"date"`
	Description string    `msgpack:"description,omitempty"`
	CreatedAt   time.Time `msgpack:"created_at"`
}

type cachedInvestment struct {
	ID              string     `msgpack:"id"`
	InstrumentType  string     `msgpack:"type"`
	Symbol          string     `msgpack:"symbol,omitempty"`
	Name            string     `msgpack:"name,omitempty"`
	Quantity        string     `msgpack:"quantity"`
	CostBasis       string     `msgpack:"cost_basis"`
	CurrentPrice    string     `msgpack:"current_price"`
	Currency        string     `msgpack:"currency"`
	LastPriceUpdate *time.Time `msgpack:"last_price_update,omitempty"`
	Sector          string     `msgpack:"sector,omitempty"`
	Geography       string     `msgpack:"geography,omitempty"`
	ISIN            string     `msgpack:"isin,omitempty"`
	Fees            string     `msgpack:"fees"`
	CreatedAt       time.Time  `msgpack:"created_at"`
	UpdatedAt       time.Time  `msgpack:"updated_at"`
}

type cachedCrypto struct {
	ID              string     `msgpack:"id"`
	Symbol          string     `msgpack:"symbol"`
	Name            string     `msgpack:"name,omitempty"`
	Quantity        string     `msgpack:"quantity"`
	AvgBuyPrice     string     `msgpack:"avg_buy_price"`
	CurrentPrice    string     `msgpack:"current_price"`
	LastPriceUpdate *time.Time `msgpack:"last_price_update,omitempty"`
	Fees            string     `msgpack:"fees"`
	CoinID          string     `msgpack:"coin_id,omitempty"`
	CreatedAt       time.Time  `msgpack:"created_at"`
	UpdatedAt       time.Time  `msgpack:"updated_at"`
}

type cachedLiability struct {
	ID             string    `msgpack:"id"`
	Name           string    `msgpack:"name"`
	Type           string    `msgpack:"type"`
	CurrentBalance string    `msgpack:"current_balance"`
	Principal      string    `msgpack:"principal"`
	InterestRate   string    `msgpack:"interest_rate"`
	Currency       string    `msgpack:"currency"`
	MonthlyPayment string    `msgpack:"monthly_payment"`
	CreatedAt      time.Time `msgpack:"created_at"`
	UpdatedAt      time.Time `msgpack:"updated_at"`
}

type cachedSnapshot struct {
	ID               string    `msgpack:"id"`
	Date             time.Time `msgpack:"date"`
	NetWorth         string    `msgpack:"net_worth"`
	TotalAssets      string    `msgpack:"total_assets"`
	TotalLiabilities string    `msgpack:"total_liabilities"`
	Liquidity        string    `msgpack:"liquidity"`
	Investments      string    `msgpack:"investments"`
	Crypto           string    `msgpack:"crypto"`
	CreatedAt        time.Time `msgpack:"created_at"`
}

func fromDomain(data *domain.FinancialData) *cachedData {
	if data == nil {
		data = domain.NewFinancialData()
	}

	out := &cachedData{
		Transactions: make([]cachedTransaction, 0, len(data.Transactions)),
		Investments:  make([]cachedInvestment, 0, len(data.Investments)),
		Crypto:       make([]cachedCrypto, 0, len(data.Crypto)),
		Liabilities:  make([]cachedLiability, 0, len(data.Liabilities)),
		Snapshots:    make([]cachedSnapshot, 0, len(data.Snapshots)),
	}

	for _, t := range data.Transactions {
		out.Transactions = append(out.Transactions, cachedTransaction{
			ID:          t.ID.String(),
			Kind:        string(t.Kind),
			Category:    t.Category,
			Amount:      t.Amount.String(),
			Date:        t.DayKey(),
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	for _, h := range data.Investments {
		out.Investments = append(out.Investments, cachedInvestment{
			ID:              h.ID.String(),
			InstrumentType:  string(h.InstrumentType),
			Symbol:          h.Symbol,
			Name:            h.Name,
			Quantity:        h.Quantity.String(),
			CostBasis:       h.CostBasis.String(),
			CurrentPrice:    h.CurrentPrice.String(),
			Currency:        h.Currency,
			LastPriceUpdate: h.LastPriceUpdate,
			Sector:          h.Sector,
			Geography:       h.Geography,
			ISIN:            h.ISIN,
			Fees:            h.Fees.String(),
			CreatedAt:       h.CreatedAt,
			UpdatedAt:       h.UpdatedAt,
		})
	}
	for _, c := range data.Crypto {
		out.Crypto = append(out.Crypto, cachedCrypto{
			ID:              c.ID.String(),
			Symbol:          c.Symbol,
			Name:            c.Name,
			Quantity:        c.Quantity.String(),
			AvgBuyPrice:     c.AvgBuyPrice.String(),
			CurrentPrice:    c.CurrentPrice.String(),
			LastPriceUpdate: c.LastPriceUpdate,
			Fees:            c.Fees.String(),
			CoinID:          c.CoinID,
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
		})
	}
	for _, l := range data.Liabilities {
		out.Liabilities = append(out.Liabilities, cachedLiability{
			ID:             l.ID.String(),
			Name:           l.Name,
			Type:           l.Type,
			CurrentBalance: l.CurrentBalance.String(),
			Principal:      l.Principal.String(),
			InterestRate:   l.InterestRate.String(),
			Currency:       l.Currency,
			MonthlyPayment: l.MonthlyPayment.String(),
			CreatedAt:      l.CreatedAt,
			UpdatedAt:      l.UpdatedAt,
		})
	}
	for _, s := range data.Snapshots {
		out.Snapshots = append(out.Snapshots, cachedSnapshot{
			ID:               s.ID.String(),
			Date:             s.Date,
			NetWorth:         s.NetWorth.String(),
			TotalAssets:      s.TotalAssets.String(),
			TotalLiabilities: s.TotalLiabilities.String(),
			Liquidity:        s.Liquidity.String(),
			Investments:      s.Investments.String(),
			Crypto:           s.Crypto.String(),
			CreatedAt:        s.CreatedAt,
		})
	}

	return out
}

// decoder collects the first parse failure so conversion code stays linear
type decoder struct {
	err error
}

func (d *decoder) decimal(field, value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(value)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return v
}

func (d *decoder) id(value string) uuid.UUID {
	v, err := uuid.Parse(value)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("invalid id %q: %w", value, err)
	}
	return v
}

func (d *decoder) day(value string) time.Time {
	v, err := domain.ParseDay(value)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("invalid date %q: %w", value, err)
	}
	return v
}

// msgpack decodes timestamps in the local zone
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (c *cachedData) toDomain() (*domain.FinancialData, error) {
	d := &decoder{}
	data := domain.NewFinancialData()

	for _, t := range c.Transactions {
		data.Transactions = append(data.Transactions, domain.Transaction{
			ID:          d.id(t.ID),
			Kind:        domain.TransactionKind(t.Kind),
			Category:    t.Category,
			Amount:      d.decimal("amount", t.Amount),
			Date:        d.day(t.Date),
			Description: t.Description,
			CreatedAt:   t.CreatedAt.UTC(),
		})
	}
	for _, h := range c.Investments {
		data.Investments = append(data.Investments, domain.InvestmentHolding{
			ID:              d.id(h.ID),
			InstrumentType:  domain.InstrumentType(h.InstrumentType),
			Symbol:          h.Symbol,
			Name:            h.Name,
			Quantity:        d.decimal("quantity", h.Quantity),
			CostBasis:       d.decimal("cost basis", h.CostBasis),
			CurrentPrice:    d.decimal("current price", h.CurrentPrice),
			Currency:        h.Currency,
			LastPriceUpdate: utcPtr(h.LastPriceUpdate),
			Sector:          h.Sector,
			Geography:       h.Geography,
			ISIN:            h.ISIN,
			Fees:            d.decimal("fees", h.Fees),
			CreatedAt:       h.CreatedAt.UTC(),
			UpdatedAt:       h.UpdatedAt.UTC(),
		})
	}
	for _, h := range c.Crypto {
		data.Crypto = append(data.Crypto, domain.CryptoHolding{
			ID:              d.id(h.ID),
			Symbol:          h.Symbol,
			Name:            h.Name,
			Quantity:        d.decimal("quantity", h.Quantity),
			AvgBuyPrice:     d.decimal("average buy price", h.AvgBuyPrice),
			CurrentPrice:    d.decimal("current price", h.CurrentPrice),
			Currency:        domain.CryptoCurrency,
			LastPriceUpdate: utcPtr(h.LastPriceUpdate),
			Fees:            d.decimal("fees", h.Fees),
			CoinID:          h.CoinID,
			CreatedAt:       h.CreatedAt.UTC(),
			UpdatedAt:       h.UpdatedAt.UTC(),
		})
	}
	for _, l := range c.Liabilities {
		data.Liabilities = append(data.Liabilities, domain.Liability{
			ID:             d.id(l.ID),
			Name:           l.Name,
			Type:           l.Type,
			CurrentBalance: d.decimal("balance", l.CurrentBalance),
			Principal:      d.decimal("principal", l.Principal),
			InterestRate:   d.decimal("interest rate", l.InterestRate),
			Currency:       l.Currency,
			MonthlyPayment: d.decimal("monthly payment", l.MonthlyPayment),
			CreatedAt:      l.CreatedAt.UTC(),
			UpdatedAt:      l.UpdatedAt.UTC(),
		})
	}
	for _, s := range c.Snapshots {
		data.Snapshots = append(data.Snapshots, domain.Snapshot{
			ID:               d.id(s.ID),
			Date:             s.Date.UTC(),
			NetWorth:         d.decimal("net worth", s.NetWorth),
			TotalAssets:      d.decimal("total assets", s.TotalAssets),
			TotalLiabilities: d.decimal("total liabilities", s.TotalLiabilities),
			Liquidity:        d.decimal("liquidity", s.Liquidity),
			Investments:      d.decimal("investments", s.Investments),
			Crypto:           d.decimal("crypto", s.Crypto),
			CreatedAt:        s.CreatedAt.UTC(),
		})
	}

	if d.err != nil {
		return nil, d.err
	}
	return data, nil
}
