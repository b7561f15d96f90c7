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
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ORDIMPORT_STORE", "sqlite:orders.db")
	t.Setenv("ORDIMPORT_ACCOUNT_DEFAULT", "Expenses:Misc")
	t.Setenv("ORDIMPORT_ACCOUNT_CARDS", "1234=Liabilities:Visa,5678=Liabilities:Amex")
	t.Setenv("ORDIMPORT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite:orders.db", cfg.Store)
	assert.Equal(t, 10, cfg.LinkWindowDays)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	accts := cfg.Accounts.Book()
	assert.Equal(t, "Expenses:Misc", accts.Default)
	assert.Equal(t, "Liabilities:Credit Card", accts.Charge)
	assert.Equal(t, map[string]string{"1234": "Liabilities:Visa", "5678": "Liabilities:Amex"}, accts.Cards)
}

func TestNewLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	buf := new(bytes.Buffer)
	l := NewLogger(buf, LogConfig{Level: "warn", Format: "json"})
	l.Info("hidden")
	l.Warn("shown", "order", "42")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"order":"42"`)

	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
	assert.Equal(t, slog.LevelError, parseLevel(" ERROR "))
}

func TestLoadMatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.csv")
	require.NoError(t, os.WriteFile(path, []byte("# regexp,account,payee\n(?i)paperback,Expenses:Books,\n"), 0644))

	matchers, err := LoadMatchFile(path)
	require.NoError(t, err)
	require.Len(t, matchers, 1)
	assert.Equal(t, "Expenses:Books", matchers[0].Account)
	assert.True(t, matchers[0].R.MatchString("Go (Paperback)"))

	none, err := LoadMatchFile("")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	for _, where := range []string{"mem:", filepath.Join(dir, "orders.ledger"), "sqlite:" + filepath.Join(dir, "orders.db")} {
		s, err := OpenStore(where)
		require.NoError(t, err, where)

		trs, err := s.Transactions()
		require.NoError(t, err, where)
		assert.Empty(t, trs, where)

		dry, err := DryRun(s)
		require.NoError(t, err, where)
		assert.NoError(t, dry.Close())
		assert.NoError(t, s.Close(), where)
	}
}

func TestLoadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"marketplace":"Amazon","source":"Listing","orders":[{"orderNumber":"1"}]}`), 0644))

	b, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, "listing", b.Source)
	require.Len(t, b.Orders, 1)
}
