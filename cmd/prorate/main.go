package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// subscriptionFlags describe the current subscription for both subcommands
type subscriptionFlags struct {
	amountPaid     string
	taxPaid        string
	startDate      string
	durationMonths int
	now            string
}

func (f *subscriptionFlags) register(cmd *cobra.Command, amountPaidDefault string) {
	cmd.Flags().StringVar(&f.amountPaid, "amount-paid", amountPaidDefault, "subtotal paid for the current plan")
	cmd.Flags().StringVar(&f.taxPaid, "tax-paid", "0", "tax paid with the current plan")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "subscription start, YYYY-MM-DD or RFC 3339")
	cmd.Flags().IntVar(&f.durationMonths, "duration-months", 1, "billing period in months")
	cmd.Flags().StringVar(&f.now, "now", "", "evaluation time, defaults to the current time")
	_ = cmd.MarkFlagRequired("start-date")
}

func (f *subscriptionFlags) snapshot() (*subscription.Snapshot, error) {
	amountPaid, err := parseDecimal("amount-paid", f.amountPaid)
	if err != nil {
		return nil, err
	}
	taxPaid, err := parseDecimal("tax-paid", f.taxPaid)
	if err != nil {
		return nil, err
	}
	start, err := parseTime("start-date", f.startDate)
	if err != nil {
		return nil, err
	}
	return &subscription.Snapshot{
		AmountPaid:     &amountPaid,
		TaxPaid:        &taxPaid,
		StartDate:      start,
		DurationMonths: f.durationMonths,
	}, nil
}

func (f *subscriptionFlags) evaluationTime() (time.Time, error) {
	if f.now == "" {
		return time.Now().UTC(), nil
	}
	return parseTime("now", f.now)
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "prorate",
		Short:         "Plan change proration calculator",
		Long:          "Runs the driver portal proration and downgrade rules offline and prints the result as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newCalcCmd(), newDowngradeCmd())
	return root
}

func newCalcCmd() *cobra.Command {
	var (
		sub          subscriptionFlags
		targetAmount string
		taxRate      string
		stateCode    string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the credit and charge of moving to a target plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := sub.snapshot()
			if err != nil {
				return err
			}
			now, err := sub.evaluationTime()
			if err != nil {
				return err
			}
			amount, err := parseDecimal("target-amount", targetAmount)
			if err != nil {
				return err
			}
			target := &plan.TargetPlan{Amount: &amount}

			var result *proration.ProrationResult
			if taxRate == "" {
				result, err = proration.ComputeProration(snapshot, target, now)
			} else {
				rate, perr := parseDecimal("tax-rate", taxRate)
				if perr != nil {
					return perr
				}
				quote, qerr := tax.NewPercentageQuote(amount, rate, stateCode)
				if qerr != nil {
					return qerr
				}
				result, err = proration.NewCalculator().Calculate(cmd.Context(), proration.ProrationParams{
					Snapshot:   snapshot,
					TargetPlan: target,
					Now:        now,
					Tax:        quote,
				})
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	sub.register(cmd, "")
	_ = cmd.MarkFlagRequired("amount-paid")
	cmd.Flags().StringVar(&targetAmount, "target-amount", "", "subtotal of the target plan, 0 for a cancellation")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "", "tax percentage applied to the target amount")
	cmd.Flags().StringVar(&stateCode, "state", "", "two letter state code, informational")
	_ = cmd.MarkFlagRequired("target-amount")
	return cmd
}

func newDowngradeCmd() *cobra.Command {
	var sub subscriptionFlags

	cmd := &cobra.Command{
		Use:   "downgrade",
		Short: "Check whether a downgrade is allowed now",
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := sub.snapshot()
			if err != nil {
				return err
			}
			now, err := sub.evaluationTime()
			if err != nil {
				return err
			}
			decision, err := proration.IsDowngradeAllowed(snapshot, now)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), decision)
		},
	}

	// the cooldown only depends on the start date
	sub.register(cmd, "0")
	return cmd
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHintf("--%s must be a decimal amount", flag).
			Mark(ierr.ErrValidation)
	}
	return d, nil
}

func parseTime(flag, value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ierr.NewErrorf("invalid --%s %q", flag, value).
		WithHintf("--%s must be YYYY-MM-DD or RFC 3339", flag).
		Mark(ierr.ErrValidation)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
