package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"loan-referral/domain"
	"loan-referral/format"
	"loan-referral/service"
)

func emiCmd() *cobra.Command {
	var (
		principal float64
		rate      float64
		tenure    float64
		unit      string
		schedule  bool
		zeroRate  bool
	)

	cmd := &cobra.Command{
		Use:   "emi",
		Short: "Compute an EMI and, optionally, its amortization schedule",
		Example: `  loan-referral emi --principal 500000 --rate 10 --tenure 5 --unit years
  loan-referral emi -p 120000 -r 0 -t 12 --allow-zero-rate --schedule`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tu, err := domain.ParseTenureUnit(unit)
			if err != nil {
				return err
			}
			req, err := service.NewLoanScheduleRequest(principal, rate, tenure, tu)
			if err != nil {
				return err
			}
			res, err := service.AmortizationEngine{AllowZeroRate: zeroRate}.ComputeSchedule(req)
			if err != nil {
				return err
			}

			f := format.INR()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Monthly EMI:     %s\n", f.Currency(res.Installment))
			fmt.Fprintf(out, "Principal:       %s (%s)\n", f.Currency(req.Principal), f.Percent(res.PrincipalShare))
			fmt.Fprintf(out, "Total interest:  %s (%s)\n", f.Currency(res.TotalInterest), f.Percent(res.InterestShare))
			fmt.Fprintf(out, "Total payable:   %s over %d months\n", f.Currency(res.TotalPayable), res.Periods)
			if !schedule {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Month\tEMI\tPrincipal\tInterest\tBalance\t")
			for _, p := range res.Schedule {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", p.Period,
					f.Amount(p.Installment, 2), f.Amount(p.Principal, 2),
					f.Amount(p.Interest, 2), f.Amount(p.Balance, 2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Float64VarP(&principal, "principal", "p", 0, "loan amount")
	cmd.Flags().Float64VarP(&rate, "rate", "r", 0, "annual interest rate in percent")
	cmd.Flags().Float64VarP(&tenure, "tenure", "t", 0, "loan tenure")
	cmd.Flags().StringVarP(&unit, "unit", "u", "months", "tenure unit: months or years")
	cmd.Flags().BoolVar(&schedule, "schedule", false, "print the month by month schedule")
	cmd.Flags().BoolVar(&zeroRate, "allow-zero-rate", false, "treat a 0% rate as P/N instead of rejecting it")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("tenure")
	return cmd
}
