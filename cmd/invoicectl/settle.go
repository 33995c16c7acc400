package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/invoice"
	"github.com/IbrahimSaliba/je-design-frontend-sub000/internal/domain/shared/valueobject"
)

var errSettlementRejected = errors.New("settlement rejected")

func newSettleCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle-check",
		Short: "Check a settlement against an invoice balance",
		Long: `Run the settlement guard for one proposed payment.

The remaining balance is the value the operator last saw; the store
re-checks it when the settlement is actually recorded. The invoice id
and date only need to be set when reproducing a specific request.`,
		Example: `  # Cash payment within the balance
  invoicectl settle-check --amount 40 --remaining 60

  # Card payments need the last four digits
  invoicectl settle-check --amount 40 --remaining 60 --method CARD --card-last4 4242

  # A paid invoice accepts no further settlements
  invoicectl settle-check --amount 5 --remaining 0 --status PAID -o json`,
		Args: cobra.NoArgs,
		RunE: runSettleCheck,
	}
	cmd.Flags().String("amount", "", "Settlement amount (required)")
	cmd.Flags().String("remaining", "", "Remaining balance of the invoice (required)")
	cmd.Flags().String("status", string(invoice.StatusDept), "Invoice status")
	cmd.Flags().String("invoice-id", "", "Invoice id (defaults to a generated id)")
	cmd.Flags().String("date", "", "Settlement date, RFC3339 (defaults to now)")
	cmd.Flags().String("method", string(invoice.PaymentMethodCash), "Payment method: CASH, CARD, CHECK, BANK_TRANSFER, OTHER")
	cmd.Flags().String("reference", "", "Payment reference (bank transfers)")
	cmd.Flags().String("card-last4", "", "Last four card digits (card payments)")
	cmd.Flags().String("check-number", "", "Check number (check payments)")
	cmd.Flags().String("bank", "", "Bank name")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("remaining")
	return cmd
}

// SettlementCheckOutput is the JSON rendering of a settlement check. Left
// is the balance after the payment and is only set when it is accepted.
type SettlementCheckOutput struct {
	Accepted  bool               `json:"accepted"`
	Code      string             `json:"code,omitempty"`
	Message   string             `json:"message,omitempty"`
	Amount    valueobject.Money  `json:"amount"`
	Remaining valueobject.Money  `json:"remaining"`
	Left      *valueobject.Money `json:"left,omitempty"`
}

func settlementDraftFromFlags(cmd *cobra.Command, currency valueobject.Currency) (invoice.SettlementDraft, invoice.InvoiceBalance, error) {
	var (
		draft   invoice.SettlementDraft
		balance invoice.InvoiceBalance
	)
	amountStr, _ := cmd.Flags().GetString("amount")
	remainingStr, _ := cmd.Flags().GetString("remaining")
	statusStr, _ := cmd.Flags().GetString("status")
	idStr, _ := cmd.Flags().GetString("invoice-id")
	dateStr, _ := cmd.Flags().GetString("date")
	method, _ := cmd.Flags().GetString("method")

	amount, err := valueobject.NewMoneyFromString(amountStr, currency)
	if err != nil {
		return draft, balance, fmt.Errorf("invalid --amount: %w", err)
	}
	remaining, err := valueobject.NewMoneyFromString(remainingStr, currency)
	if err != nil {
		return draft, balance, fmt.Errorf("invalid --remaining: %w", err)
	}
	status := invoice.Status(strings.ToUpper(statusStr))
	if !status.IsValid() {
		return draft, balance, fmt.Errorf("invalid --status %q", statusStr)
	}

	id := uuid.New()
	if idStr != "" {
		if id, err = uuid.Parse(idStr); err != nil {
			return draft, balance, fmt.Errorf("invalid --invoice-id: %w", err)
		}
	}
	date := time.Now()
	if dateStr != "" {
		if date, err = time.Parse(time.RFC3339, dateStr); err != nil {
			return draft, balance, fmt.Errorf("invalid --date: %w", err)
		}
	}

	draft = invoice.SettlementDraft{
		InvoiceID: id,
		Amount:    amount.Amount(),
		Date:      date,
		Method:    invoice.PaymentMethod(strings.ToUpper(method)),
	}
	draft.Reference, _ = cmd.Flags().GetString("reference")
	draft.CardLast4, _ = cmd.Flags().GetString("card-last4")
	draft.CheckNumber, _ = cmd.Flags().GetString("check-number")
	draft.BankName, _ = cmd.Flags().GetString("bank")

	balance = invoice.InvoiceBalance{
		InvoiceID: id,
		Status:    status,
		Remaining: remaining.Amount(),
	}
	return draft, balance, nil
}

func runSettleCheck(cmd *cobra.Command, _ []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	draft, balance, err := settlementDraftFromFlags(cmd, p.currency)
	if err != nil {
		return err
	}

	checkErr := invoice.NewSettlementGuard().Evaluate(draft, balance)
	out := SettlementCheckOutput{
		Accepted:  checkErr == nil,
		Amount:    valueobject.MustMoney(draft.Amount, p.currency),
		Remaining: valueobject.MustMoney(balance.Remaining, p.currency),
	}
	if checkErr != nil {
		out.Code = invoice.CodeOf(checkErr)
		out.Message = checkErr.Error()
	} else {
		left, err := out.Remaining.Subtract(out.Amount)
		if err != nil {
			return err
		}
		out.Left = &left
	}
	log.Info("Settlement checked",
		zap.String("invoice_id", draft.InvoiceID.String()),
		zap.String("method", string(draft.Method)),
		zap.String("currency", string(out.Amount.Currency())),
		zap.Bool("accepted", out.Accepted),
		zap.String("code", out.Code),
	)

	if p.json {
		if err := p.encode(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(p.w, "Amount:    %s\n", out.Amount.Format(p.locale))
		fmt.Fprintf(p.w, "Remaining: %s\n", out.Remaining.Format(p.locale))
		switch {
		case !out.Accepted:
			fmt.Fprintf(p.w, "Result:    rejected [%s] %s\n", out.Code, out.Message)
		case out.Left.IsZero():
			fmt.Fprintln(p.w, "Result:    accepted, the invoice is settled in full")
		default:
			fmt.Fprintf(p.w, "Result:    accepted, %s left after this payment\n", out.Left.Format(p.locale))
		}
	}

	if checkErr != nil {
		return fmt.Errorf("%w: %s", errSettlementRejected, out.Code)
	}
	return nil
}
