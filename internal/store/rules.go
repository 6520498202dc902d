package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BrandOverride maps any merchant label containing Match (compared
// case-insensitively) to a fixed display name. Overrides are scanned in
// order; the first match wins.
type BrandOverride struct {
	Match   string `yaml:"match"`
	Display string `yaml:"display"`
}

// RuleSet holds the data-driven normalization rules: the ordered brand
// override table and the anchored online-only merchant patterns.
type RuleSet struct {
	Overrides  []BrandOverride `yaml:"overrides"`
	OnlineOnly []string        `yaml:"online_only"`
}

// DefaultRules returns the built-in rule tables. Brands here are the chains
// the provider most commonly reports for Canadian grocery queries.
func DefaultRules() RuleSet {
	return RuleSet{
		Overrides: []BrandOverride{
			{Match: "walmart", Display: "Walmart"},
			{Match: "costco", Display: "Costco"},
			{Match: "save on foods", Display: "Save On Foods"},
			{Match: "superstore", Display: "Real Canadian Superstore"},
			{Match: "safeway", Display: "Safeway"},
			{Match: "no frills", Display: "No Frills"},
			{Match: "t&t", Display: "T&T Supermarket"},
			{Match: "shoppers drug", Display: "Shoppers Drug Mart"},
			{Match: "london drugs", Display: "London Drugs"},
			{Match: "whole foods", Display: "Whole Foods Market"},
			{Match: "canadian tire", Display: "Canadian Tire"},
			{Match: "dollarama", Display: "Dollarama"},
			{Match: "loblaws", Display: "Loblaws"},
			{Match: "sobeys", Display: "Sobeys"},
			{Match: "7 eleven", Display: "7-Eleven"},
		},
		OnlineOnly: []string{
			`^amazon\b`,
			`^ebay\b`,
			`^aliexpress\b`,
			`^alibaba\b`,
			`^etsy\b`,
			`^temu\b`,
			`^wish\b`,
			`^shein\b`,
			`^wayfair\b`,
			`^newegg\b`,
			`^instacart\b`,
			`^doordash\b`,
			`^uber eats\b`,
			`^ubereats\b`,
			`^skipthedishes\b`,
			`^grubhub\b`,
			`^shopify\b`,
		},
	}
}

// LoadRules reads extra rules from a YAML file and prepends them to the
// defaults, so file entries take precedence over built-ins. An empty path
// returns the defaults unchanged.
func LoadRules(path string) (RuleSet, error) {
	base := DefaultRules()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading store rules file: %w", err)
	}

	var extra RuleSet
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return RuleSet{}, fmt.Errorf("parsing store rules file: %w", err)
	}

	return RuleSet{
		Overrides:  append(extra.Overrides, base.Overrides...),
		OnlineOnly: append(extra.OnlineOnly, base.OnlineOnly...),
	}, nil
}
