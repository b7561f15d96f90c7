/*
Copyright 2024 by Milo Christiansen

This software is provided 'as-is', without any express or implied warranty. In
no event will the authors be held liable for any damages arising from the use of
this software.

Permission is granted to anyone to use this software for any purpose, including
commercial applications, and to alter it and redistribute it freely, subject to
the following restrictions:

1. The origin of this software must not be misrepresented; you must not claim
that you wrote the original software. If you use this software in a product, an
acknowledgment in the product documentation would be appreciated but is not
required.

2. Altered source versions must be plainly marked as such, and must not be
misrepresented as being the original software.

3. This notice may not be removed or altered from any source distribution.
*/

package tools

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/westbury/jmoney-sub007/updater"
)

// Config is the environment configuration shared by the tools. Every variable carries the ORDIMPORT_
// prefix, a .env file in the working directory is read first if there is one.
type Config struct {
	Store     string `env:"STORE" envDefault:"orders.ledger"` // See OpenStore.
	MatchFile string `env:"MATCH_FILE"`

	// Days either side of an order date a statement line may be to pay for it.
	LinkWindowDays int `env:"LINK_WINDOW_DAYS" envDefault:"10"`

	Accounts AccountConfig `envPrefix:"ACCOUNT_"`
	Log      LogConfig     `envPrefix:"LOG_"`
}

// AccountConfig names the accounts orders post to.
type AccountConfig struct {
	Charge     string `env:"CHARGE" envDefault:"Liabilities:Credit Card"`
	Postage    string `env:"POSTAGE" envDefault:"Expenses:Postage"`
	ImportFees string `env:"IMPORT_FEES" envDefault:"Expenses:Import Fees"`
	Giftcard   string `env:"GIFTCARD" envDefault:"Assets:Gift Cards"`
	Promotion  string `env:"PROMOTION" envDefault:"Income:Promotions"`
	Default    string `env:"DEFAULT" envDefault:"Expenses:Unsorted"`

	// 1234=Liabilities:Visa,5678=Liabilities:Amex
	Cards map[string]string `env:"CARDS" envKeyValSeparator:"="`
}

// LogConfig controls the default logger.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ORDIMPORT_"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Book returns the account names as used by updater.Book.
func (c *AccountConfig) Book() updater.Accounts {
	return updater.Accounts{
		Charge:     c.Charge,
		Postage:    c.Postage,
		ImportFees: c.ImportFees,
		Giftcard:   c.Giftcard,
		Promotion:  c.Promotion,
		Default:    c.Default,
		Cards:      c.Cards,
	}
}
