package refdata

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ishtar-commerce/internal/finance"
	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/payment"
	"github.com/noah-isme/ishtar-commerce/internal/promotion"
	"github.com/noah-isme/ishtar-commerce/internal/shipping"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrEmpty is returned when a document carries no tables at all.
var ErrEmpty = errors.New("refdata: document is empty")

// Tables holds every static rule table the engines read. Loaded once and
// treated as read-only afterwards.
type Tables struct {
	Currencies      []money.CurrencyConfig `yaml:"currencies" validate:"dive"`
	Zones           []shipping.Zone        `yaml:"zones" validate:"dive"`
	Carriers        []shipping.Carrier     `yaml:"carriers" validate:"dive"`
	ShippingMethods []shipping.Method      `yaml:"shipping_methods" validate:"dive"`
	ZoneRules       []shipping.ZoneRule    `yaml:"zone_rules" validate:"dive"`
	Gateways        []payment.Gateway      `yaml:"gateways" validate:"dive"`
	PaymentMethods  []payment.Method       `yaml:"payment_methods" validate:"dive"`
	Promotions      []promotion.Promotion  `yaml:"promotions" validate:"dive"`
	Products        []finance.Product      `yaml:"products" validate:"dive"`

	warnings []string
}

// Warnings lists referential and rate problems found while loading. They
// never fail a load; missing references are skipped at request time.
func (t *Tables) Warnings() []string {
	return append([]string(nil), t.warnings...)
}

// CurrencyTable indexes the currencies.
func (t *Tables) CurrencyTable() money.Table {
	return money.NewTable(t.Currencies)
}

// Default returns the embedded storefront tables.
func Default() (*Tables, error) {
	return Load(bytes.NewReader(defaultsYAML))
}

// LoadFile reads tables from a YAML file on disk.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes, validates and cross-checks tables from r.
func Load(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("refdata: decode: %w", err)
	}
	if err := validate.Struct(&t); err != nil {
		return nil, fmt.Errorf("refdata: validate: %w", err)
	}
	t.warnings = t.crossCheck()
	return &t, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (t *Tables) crossCheck() []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for _, err := range t.CurrencyTable().Validate() {
		warn("%v", err)
	}

	zones := make(map[string]struct{}, len(t.Zones))
	for _, z := range t.Zones {
		if _, dup := zones[z.Code]; dup {
			warn("zone %s defined more than once", z.Code)
		}
		zones[z.Code] = struct{}{}
	}
	carriers := make(map[string]struct{}, len(t.Carriers))
	for _, c := range t.Carriers {
		carriers[c.ID] = struct{}{}
		if c.TrackingURLPattern != "" && !strings.Contains(c.TrackingURLPattern, "TRACKING_NUMBER") {
			warn("carrier %s tracking pattern has no TRACKING_NUMBER placeholder", c.ID)
		}
	}
	methods := make(map[string]struct{}, len(t.ShippingMethods))
	for _, m := range t.ShippingMethods {
		methods[m.ID] = struct{}{}
		if _, ok := carriers[m.CarrierID]; !ok {
			warn("shipping method %s references unknown carrier %s", m.ID, m.CarrierID)
		}
	}
	for _, r := range t.ZoneRules {
		if _, ok := methods[r.MethodID]; !ok {
			warn("zone rule %s/%s references unknown method", r.ZoneCode, r.MethodID)
		}
		if _, ok := zones[r.ZoneCode]; !ok && r.ZoneCode != shipping.ZoneGCC && r.ZoneCode != shipping.ZoneGlobal {
			warn("zone rule %s/%s references unknown zone", r.ZoneCode, r.MethodID)
		}
	}

	gateways := make(map[string]struct{}, len(t.Gateways))
	for _, g := range t.Gateways {
		gateways[g.ID] = struct{}{}
		if g.MaxAmount.LessThan(g.MinAmount) {
			warn("gateway %s max amount below min amount", g.ID)
		}
	}
	for _, m := range t.PaymentMethods {
		if _, ok := gateways[m.GatewayID]; !ok {
			warn("payment method %s references unknown gateway %s", m.ID, m.GatewayID)
		}
	}
	for _, p := range t.Promotions {
		if _, ok := p.Amount(); !ok {
			warn("promotion %s has no discount value", p.ID)
		}
		if p.Scope == promotion.ScopeMinOrder && p.MinOrderAmount == nil {
			warn("promotion %s is min_order scoped without a minimum", p.ID)
		}
	}
	return warnings
}
