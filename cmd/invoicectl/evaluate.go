package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
)

// errBlocked makes a blocked evaluation exit non-zero
var errBlocked = errors.New("evaluation blocked")

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [draft-file]",
		Short: "Run the save guard against a draft JSON file",
		Long: `Evaluate a draft exactly as the editor would before saving it.

The draft file holds the same JSON the editor submits. A baseline file
marks the draft as an edit of an existing invoice; without one the draft
is treated as a new invoice. The stock file maps item ids to
{"available", "min_stock"}; items missing from it are reported as
unverifiable rather than failing the evaluation.

The command exits non-zero when the outcome is BLOCKED.`,
		Example: `  # Evaluate a new invoice
  invoicectl evaluate draft.json --stock stock.json

  # Evaluate an edit, acknowledging a prompt from a previous run
  invoicectl evaluate draft.json --baseline baseline.json --ack 3f9a1c2b7d4e5f60

  # Machine-readable output with a stricter minimum
  invoicectl evaluate draft.json -o json --minimum-amount 25`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluate,
	}
	cmd.Flags().String("baseline", "", "Baseline JSON file of the invoice being edited")
	cmd.Flags().String("stock", "", "Stock snapshot JSON file keyed by item id")
	cmd.Flags().StringSlice("ack", nil, "Prompt keys to treat as acknowledged")
	cmd.Flags().String("minimum-amount", "", "Override the minimum invoice amount")
	cmd.Flags().String("large-adjustment-ratio", "", "Override the large adjustment ratio")
	return cmd
}

// baselineFile is the on-disk form of a baseline
type baselineFile struct {
	InvoiceID uuid.UUID              `json:"invoice_id"`
	Status    invoice.Status         `json:"status"`
	Deducted  bool                   `json:"deducted_stock"`
	Lines     []invoice.BaselineLine `json:"lines"`
}

// EvaluationOutput is the JSON rendering of a guard outcome
type EvaluationOutput struct {
	Outcome      invoice.OutcomeKind `json:"outcome"`
	Code         string              `json:"code,omitempty"`
	Message      string              `json:"message,omitempty"`
	Totals       invoice.Totals      `json:"totals"`
	Prompts      []invoice.Prompt    `json:"prompts,omitempty"`
	Acknowledged []invoice.Prompt    `json:"acknowledged,omitempty"`
}

func newEvaluationOutput(o invoice.Outcome) EvaluationOutput {
	out := EvaluationOutput{
		Outcome:      o.Kind,
		Code:         o.Code(),
		Totals:       o.Totals.Rounded(),
		Prompts:      o.Prompts,
		Acknowledged: o.Acknowledged,
	}
	if o.Reason != nil {
		out.Message = o.Reason.Error()
	}
	return out
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	policy, err := policyFromFlags(cmd)
	if err != nil {
		return err
	}

	var draft invoice.Draft
	if err := readJSONFile(args[0], &draft); err != nil {
		return err
	}

	var baseline *invoice.Baseline
	if path, _ := cmd.Flags().GetString("baseline"); path != "" {
		var bf baselineFile
		if err := readJSONFile(path, &bf); err != nil {
			return err
		}
		baseline = invoice.RestoreBaseline(bf.InvoiceID, bf.Status, bf.Deducted, bf.Lines)
	}

	snapshot := invoice.StockSnapshot{}
	if path, _ := cmd.Flags().GetString("stock"); path != "" {
		if err := readJSONFile(path, &snapshot); err != nil {
			return err
		}
	}

	acks, _ := cmd.Flags().GetStringSlice("ack")
	log.Debug("Evaluating draft",
		zap.String("file", args[0]),
		zap.Int("lines", len(draft.Lines)),
		zap.Bool("edit", baseline != nil),
		zap.Int("stock_entries", len(snapshot)),
		zap.Int("acknowledged", len(acks)),
	)

	outcome := invoice.NewSaveGuard(policy).Evaluate(&draft, baseline, snapshot, invoice.NewAcknowledgements(acks...))
	log.Info("Draft evaluated", zap.String("outcome", string(outcome.Kind)), zap.String("code", outcome.Code()))

	if p.json {
		if err := p.encode(newEvaluationOutput(outcome)); err != nil {
			return err
		}
	} else {
		p.printOutcome(outcome)
	}

	if outcome.IsBlocked() {
		return fmt.Errorf("%w: %s", errBlocked, outcome.Code())
	}
	return nil
}

func (p *printer) printOutcome(o invoice.Outcome) {
	t := o.Totals
	fmt.Fprintf(p.w, "Outcome:   %s\n", o.Kind)
	fmt.Fprintf(p.w, "Subtotal:  %s\n", p.money(t.Subtotal))
	fmt.Fprintf(p.w, "Discount:  %s\n", p.money(t.Discount))
	fmt.Fprintf(p.w, "Total:     %s\n", p.money(t.TotalAfterDiscount))
	if t.FreeItemsValue != nil {
		fmt.Fprintf(p.w, "Free:      %s\n", p.money(*t.FreeItemsValue))
	}
	if o.Reason != nil {
		fmt.Fprintf(p.w, "Blocked:   [%s] %s\n", o.Code(), o.Reason.Error())
	}
	for _, pr := range o.Prompts {
		fmt.Fprintf(p.w, "Confirm:   [%s] %s (ack: %s)\n", pr.Kind, pr.Message, pr.Key)
	}
	for _, pr := range o.Acknowledged {
		fmt.Fprintf(p.w, "Accepted:  [%s] %s\n", pr.Kind, pr.Message)
	}
}
