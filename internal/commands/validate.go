package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/double-entry-ledger/internal/domain/ledger"
)

// ErrRejected is returned when the draft fails validation
var ErrRejected = errors.New("transaction rejected")

// draftFile is the on-disk form of a draft. JSON documents are valid YAML, so
// one decoder reads both.
type draftFile struct {
	TxnID       string      `yaml:"txn_id"`
	LedgerID    string      `yaml:"ledger_id"`
	EffectiveAt string      `yaml:"effective_at"`
	Metadata    string      `yaml:"metadata"`
	Entries     []entryFile `yaml:"entries"`
}

type entryFile struct {
	AccountID     string `yaml:"account_id"`
	Amount        int64  `yaml:"amount"`
	DecimalPlaces int32  `yaml:"decimal_places"`
	Currency      string `yaml:"currency"`
	Metadata      string `yaml:"metadata"`
}

func newValidateCommand() *cobra.Command {
	var prefix string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a draft transaction (JSON or YAML) against the balance rules",
		Long: "Reads a draft transaction from FILE, or from stdin when FILE is -, and reports\n" +
			"whether it would be accepted. Exits with status 1 when it is rejected.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), raw, prefix, asJSON, time.Now)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", ledger.DefaultTxnIDPrefix, "required transaction ID prefix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the validated transaction as JSON")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

func runValidate(out io.Writer, raw []byte, prefix string, asJSON bool, now func() time.Time) error {
	draft, err := parseDraft(raw)
	if err != nil {
		return err
	}

	validator := ledger.NewValidator(ledger.WithTxnIDPrefix(prefix), ledger.WithClock(now))
	txn, err := validator.Validate(draft)
	if err != nil {
		var validationErr ledger.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintf(out, "REJECTED %s: %s: %s\n", draft.TxnID, validationErr.Reason, validationErr.Error())
			return ErrRejected
		}
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(txn)
	}

	fmt.Fprintf(out, "OK %s: %d entries balanced in %s\n", txn.TxnID, len(txn.Entries), strings.Join(txn.Currencies(), ", "))
	return nil
}

func parseDraft(raw []byte) (ledger.Draft, error) {
	var f draftFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return ledger.Draft{}, fmt.Errorf("parsing draft: %w", err)
	}

	draft := ledger.Draft{
		TxnID:    f.TxnID,
		LedgerID: f.LedgerID,
		Metadata: f.Metadata,
		Entries:  make([]ledger.Entry, len(f.Entries)),
	}
	for i, e := range f.Entries {
		draft.Entries[i] = ledger.Entry{
			AccountID:     e.AccountID,
			Amount:        e.Amount,
			DecimalPlaces: e.DecimalPlaces,
			Currency:      e.Currency,
			Metadata:      e.Metadata,
		}
	}

	if f.EffectiveAt != "" {
		at, err := time.Parse(time.RFC3339Nano, f.EffectiveAt)
		if err != nil {
			return ledger.Draft{}, fmt.Errorf("parsing effective_at: %w", err)
		}
		draft.EffectiveAt = &at
	}

	return draft, nil
}
