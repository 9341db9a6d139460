// Command refcheck validates a reference data document before it is deployed.
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/ishtar-commerce/internal/money"
	"github.com/noah-isme/ishtar-commerce/internal/obs"
	"github.com/noah-isme/ishtar-commerce/internal/refdata"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("file", os.Getenv("REFDATA_PATH"), "reference data YAML file; embedded defaults when empty")
	strict := flag.Bool("strict", false, "exit non-zero when warnings are reported")
	flag.Parse()

	logger := obs.NewLogger("console", "info")

	var (
		tables *refdata.Tables
		err    error
	)
	if *path == "" {
		tables, err = refdata.Default()
	} else {
		tables, err = refdata.LoadFile(*path)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("file", *path).Msg("reference data invalid")
	}

	currencies := tables.CurrencyTable()
	sample := decimal.NewFromInt(1000)
	for _, code := range currencies.Codes() {
		logger.Info().
			Str("currency", code).
			Str("sample", money.FormatMoney(currencies, sample, code, "en")).
			Msg("currency")
	}
	logger.Info().
		Int("zones", len(tables.Zones)).
		Int("zone_rules", len(tables.ZoneRules)).
		Int("gateways", len(tables.Gateways)).
		Int("payment_methods", len(tables.PaymentMethods)).
		Int("promotions", len(tables.Promotions)).
		Int("products", len(tables.Products)).
		Msg("reference data loaded")

	warnings := tables.Warnings()
	for _, w := range warnings {
		logger.Warn().Msg(w)
	}
	if *strict && len(warnings) > 0 {
		os.Exit(1)
	}
}
