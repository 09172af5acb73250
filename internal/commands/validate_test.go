package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }

const balancedYAML = `
txn_id: txn_rent
ledger_id: ldg_main
effective_at: "2024-02-29T12:00:00Z"
entries:
  - account_id: acc_cash
    amount: -120000
    decimal_places: 2
    currency: EUR
  - account_id: acc_rent
    amount: 120000
    decimal_places: 2
    currency: EUR
`

const unbalancedJSON = `{
  "txn_id": "txn_bad",
  "ledger_id": "ldg_main",
  "entries": [
    {"account_id": "acc_a", "amount": 100, "decimal_places": 2, "currency": "USD"},
    {"account_id": "acc_b", "amount": -90, "decimal_places": 2, "currency": "USD"}
  ]
}`

func TestRunValidate(t *testing.T) {
	t.Run("BalancedYAML", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, []byte(balancedYAML), ledger.DefaultTxnIDPrefix, false, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "OK txn_rent: 2 entries balanced in EUR\n", out.String())
	})

	t.Run("UnbalancedJSON", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, []byte(unbalancedJSON), ledger.DefaultTxnIDPrefix, false, fixedNow)
		require.ErrorIs(t, err, ErrRejected)
		assert.True(t, strings.HasPrefix(out.String(), "REJECTED txn_bad: unbalanced_currency"))
		assert.Contains(t, out.String(), "USD")
	})

	t.Run("PrefixFlag", func(t *testing.T) {
		var out bytes.Buffer
		err := runValidate(&out, []byte(balancedYAML), "tx-", false, fixedNow)
		require.ErrorIs(t, err, ErrRejected)
		assert.Contains(t, out.String(), "malformed_id")
	})

	t.Run("JSONOutputDefaultsEffectiveAt", func(t *testing.T) {
		doc := strings.Replace(balancedYAML, "effective_at: \"2024-02-29T12:00:00Z\"\n", "", 1)
		var out bytes.Buffer
		require.NoError(t, runValidate(&out, []byte(doc), ledger.DefaultTxnIDPrefix, true, fixedNow))

		var txn ledger.Transaction
		require.NoError(t, json.Unmarshal(out.Bytes(), &txn))
		assert.Equal(t, "txn_rent", txn.TxnID)
		assert.True(t, fixedNow().Equal(txn.EffectiveAt))
		assert.Len(t, txn.Entries, 2)
	})

	t.Run("BadEffectiveAt", func(t *testing.T) {
		doc := strings.Replace(balancedYAML, "2024-02-29T12:00:00Z", "yesterday", 1)
		err := runValidate(&bytes.Buffer{}, []byte(doc), ledger.DefaultTxnIDPrefix, false, fixedNow)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
		assert.Contains(t, err.Error(), "effective_at")
	})

	t.Run("NotADocument", func(t *testing.T) {
		err := runValidate(&bytes.Buffer{}, []byte("entries: [unterminated"), ledger.DefaultTxnIDPrefix, false, fixedNow)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing draft")
	})
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(balancedYAML), 0644))

	t.Run("File", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"validate", path})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "OK txn_rent")
	})

	t.Run("Stdin", func(t *testing.T) {
		var out, errOut bytes.Buffer
		cmd := NewRootCommand()
		cmd.SetOut(&out)
		cmd.SetErr(&errOut)
		cmd.SetIn(strings.NewReader(unbalancedJSON))
		cmd.SetArgs([]string{"validate", "-"})
		require.ErrorIs(t, cmd.Execute(), ErrRejected)
		assert.Equal(t, 1, strings.Count(out.String(), "txn_bad"))
		assert.Contains(t, out.String(), "REJECTED txn_bad")
		assert.Empty(t, errOut.String(), "rejection is reported once, on stdout")
	})

	t.Run("MissingFile", func(t *testing.T) {
		var errOut bytes.Buffer
		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&errOut)
		cmd.SetArgs([]string{"validate", filepath.Join(t.TempDir(), "nope.yaml")})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading")
		assert.Empty(t, errOut.String())
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ledgerctl dev (commit: none, built: unknown)\n", out.String())
}
