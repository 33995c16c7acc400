package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared/valueobject"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/infrastructure/logger"
)

var version = "0.1.0"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "invoicectl",
		Short: "Evaluate invoice drafts and settlements without a running store",
		Long: `invoicectl runs the save guard and the settlement guard locally.

Drafts, baselines and stock snapshots are read from JSON files, so a
support engineer can replay what the editor would have decided for a
given invoice without touching the accounting store.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringP("output", "o", "text", "Output format: text or json")
	root.PersistentFlags().String("currency", string(valueobject.DefaultCurrency), "Currency used to display amounts")
	root.PersistentFlags().String("locale", "en", "Locale used to display amounts")

	root.AddCommand(newEvaluateCmd(), newSettleCheckCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printer renders amounts and outcomes for the output flags
type printer struct {
	w        io.Writer
	json     bool
	currency valueobject.Currency
	locale   language.Tag
}

func newPrinter(cmd *cobra.Command) (*printer, error) {
	format, _ := cmd.Flags().GetString("output")
	currency, _ := cmd.Flags().GetString("currency")
	locale, _ := cmd.Flags().GetString("locale")

	if format != "text" && format != "json" {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	return &printer{
		w:        cmd.OutOrStdout(),
		json:     format == "json",
		currency: valueobject.Currency(currency),
		locale:   tag,
	}, nil
}

func (p *printer) money(amount decimal.Decimal) string {
	return valueobject.MustMoney(amount, p.currency).Format(p.locale)
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(logger.Config{Level: level, Format: "console", Output: "stderr"})
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func policyFromFlags(cmd *cobra.Command) (invoice.Policy, error) {
	policy := invoice.DefaultPolicy()
	if v, _ := cmd.Flags().GetString("minimum-amount"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return policy, fmt.Errorf("invalid --minimum-amount: %w", err)
		}
		policy.MinimumInvoiceAmount = d
	}
	if v, _ := cmd.Flags().GetString("large-adjustment-ratio"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return policy, fmt.Errorf("invalid --large-adjustment-ratio: %w", err)
		}
		policy.LargeAdjustmentRatio = d
	}
	return policy, nil
}
