package finance

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

var (
	unknownCostRatio    = decimal.RequireFromString("0.7")
	fallbackFeeFixed    = decimal.NewFromInt(1)
	fallbackFeePercent  = decimal.RequireFromString("2.5")
	handlingPerItem     = decimal.NewFromInt(2)
	shippingTierBaseFee = map[shipping.MethodType]decimal.Decimal{
		shipping.MethodStandard: decimal.NewFromInt(25),
		shipping.MethodExpress:  decimal.NewFromInt(45),
		shipping.MethodVIP:      decimal.NewFromInt(120),
	}
	hundred = decimal.NewFromInt(100)
)

// Product carries supplier cost components used for landed cost.
type Product struct {
	ID               string           `yaml:"id" json:"id" validate:"required"`
	SKU              string           `yaml:"sku" json:"sku"`
	Name             string           `yaml:"name" json:"name"`
	Brand            string           `yaml:"brand" json:"brand"`
	Category         string           `yaml:"category" json:"category"`
	Price            decimal.Decimal  `yaml:"price" json:"price"`
	WeightKg         *decimal.Decimal `yaml:"weight_kg,omitempty" json:"weightKg,omitempty"`
	SupplierCurrency string           `yaml:"supplier_currency" json:"supplierCurrency"`
	SupplierBaseCost decimal.Decimal  `yaml:"supplier_base_cost" json:"supplierBaseCost"`
	SupplierShipping decimal.Decimal  `yaml:"supplier_shipping" json:"supplierShipping"`
	SupplierCustoms  decimal.Decimal  `yaml:"supplier_customs" json:"supplierCustoms"`
	TotalCostLedger  *decimal.Decimal `yaml:"total_cost_ledger,omitempty" json:"totalCostLedger,omitempty"`
}

// OrderItem is a line on a placed order.
type OrderItem struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order is the financial view of a placed order. Total is the revenue in the
// ledger currency, including shipping charged to the customer.
type Order struct {
	ID               string              `json:"id" validate:"required"`
	Total            decimal.Decimal     `json:"total"`
	Items            []OrderItem         `json:"items" validate:"dive"`
	ItemsCount       int                 `json:"itemsCount,omitempty"`
	PaymentGatewayID string              `json:"paymentGatewayId,omitempty"`
	ShippingMethod   shipping.MethodType `json:"shippingMethod,omitempty"`
	ShippingCharged  decimal.Decimal     `json:"shippingCharged"`
}

// Breakdown splits the cost side of a profit calculation.
type Breakdown struct {
	ProductCost        decimal.Decimal `json:"productCost"`
	PaymentFees        decimal.Decimal `json:"paymentFees"`
	ShippingCostActual decimal.Decimal `json:"shippingCostActual"`
	ShippingRevenue    decimal.Decimal `json:"shippingRevenue"`
}

// Profit is the computed economics of one order.
type Profit struct {
	OrderID       string          `json:"orderId"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
	Revenue       decimal.Decimal `json:"revenue"`
	Cost          decimal.Decimal `json:"cost"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	MarginPercent decimal.Decimal `json:"marginPercent"`
	Breakdown     Breakdown       `json:"breakdown"`
}

// GatewayLookup resolves a gateway by id.
type GatewayLookup interface {
	Gateway(id string) (payment.Gateway, bool)
}

// Config wires a Calculator.
type Config struct {
	Products   []Product
	Currencies money.Table
	Gateways   GatewayLookup
	Now        func() time.Time
	Logger     *zerolog.Logger
}

// Calculator computes order profitability. It never mutates its inputs.
type Calculator struct {
	bySKU      map[string]Product
	byName     map[string]Product
	currencies money.Table
	gateways   GatewayLookup
	now        func() time.Time
	log        zerolog.Logger
}

// NewCalculator indexes products by id, SKU and name.
func NewCalculator(cfg Config) *Calculator {
	c := &Calculator{
		bySKU:      make(map[string]Product, len(cfg.Products)*2),
		byName:     make(map[string]Product, len(cfg.Products)),
		currencies: cfg.Currencies,
		gateways:   cfg.Gateways,
		now:        cfg.Now,
		log:        zerolog.Nop(),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "finance").Logger()
	}
	for _, p := range cfg.Products {
		if p.ID != "" {
			c.bySKU[p.ID] = p
		}
		if p.SKU != "" {
			c.bySKU[p.SKU] = p
		}
		if name := strings.ToLower(strings.TrimSpace(p.Name)); name != "" {
			c.byName[name] = p
		}
	}
	return c
}

// LandedCost is the per-unit cost of product in the ledger currency.
func (c *Calculator) LandedCost(p Product) decimal.Decimal {
	return LandedCost(c.currencies, p)
}

// LandedCost prefers the precomputed ledger total, otherwise converts the
// supplier cost components.
func LandedCost(currencies money.Table, p Product) decimal.Decimal {
	if p.TotalCostLedger != nil && p.TotalCostLedger.Sign() > 0 {
		return *p.TotalCostLedger
	}
	total := p.SupplierBaseCost.Add(p.SupplierShipping).Add(p.SupplierCustoms)
	return currencies.ToLedger(total, p.SupplierCurrency)
}

func (c *Calculator) product(item OrderItem) (Product, bool) {
	if item.SKU != "" {
		if p, ok := c.bySKU[item.SKU]; ok {
			return p, true
		}
	}
	p, ok := c.byName[strings.ToLower(strings.TrimSpace(item.ProductName))]
	return p, ok
}

// ProductCost sums landed cost per line, falling back to 70% of the line
// price for unknown products.
func (c *Calculator) ProductCost(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		if p, ok := c.product(item); ok {
			total = total.Add(c.LandedCost(p).Mul(qty))
			continue
		}
		c.log.Debug().Str("sku", item.SKU).Str("product", item.ProductName).Msg("unknown product, estimating cost from price")
		total = total.Add(item.UnitPrice.Mul(unknownCostRatio).Mul(qty))
	}
	return total
}

// PaymentFee charges the bound gateway's fee, or 1 + 2.5% when the gateway
// is missing or no longer configured.
func (c *Calculator) PaymentFee(gatewayID string, revenue decimal.Decimal) decimal.Decimal {
	if c.gateways != nil && gatewayID != "" {
		if gw, ok := c.gateways.Gateway(gatewayID); ok {
			return payment.Fee(gw, revenue)
		}
	}
	return fallbackFeeFixed.Add(money.Percent(revenue, fallbackFeePercent))
}

// ActualShippingCost estimates what fulfilment costs the business.
func ActualShippingCost(method shipping.MethodType, units int) decimal.Decimal {
	base, ok := shippingTierBaseFee[shipping.MethodType(strings.ToLower(string(method)))]
	if !ok {
		base = shippingTierBaseFee[shipping.MethodStandard]
	}
	if units < 0 {
		units = 0
	}
	return base.Add(handlingPerItem.Mul(decimal.NewFromInt(int64(units))))
}

func (o Order) units() int {
	if o.ItemsCount > 0 {
		return o.ItemsCount
	}
	n := 0
	for _, it := range o.Items {
		if it.Quantity > 0 {
			n += it.Quantity
		}
	}
	return n
}

// OrderProfit computes revenue, cost, net profit and margin for order.
func (c *Calculator) OrderProfit(order Order) Profit {
	revenue := order.Total
	productCost := c.ProductCost(order.Items)
	fees := c.PaymentFee(order.PaymentGatewayID, revenue)
	shippingActual := ActualShippingCost(order.ShippingMethod, order.units())

	cost := productCost.Add(fees).Add(shippingActual)
	net := revenue.Sub(cost)
	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = net.Div(revenue).Mul(hundred)
	}
	return Profit{
		OrderID:       order.ID,
		CalculatedAt:  c.now().UTC(),
		Revenue:       revenue,
		Cost:          cost,
		NetProfit:     net,
		MarginPercent: margin,
		Breakdown: Breakdown{
			ProductCost:        productCost,
			PaymentFees:        fees,
			ShippingCostActual: shippingActual,
			ShippingRevenue:    order.ShippingCharged,
		},
	}
}
