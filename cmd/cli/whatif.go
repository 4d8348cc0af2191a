package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/spendsense/internal/insights"
	"github.com/dvloznov/spendsense/internal/whatif"
)

func (a *app) whatifCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whatif",
		Short: "Simulate hypothetical financial changes",
	}
	cmd.PersistentFlags().StringP("user", "u", "", "user id")
	_ = cmd.MarkPersistentFlagRequired("user")
	cmd.PersistentFlags().Int("months", 0, "projection horizon in months")

	cmd.AddCommand(
		a.extraPaymentCmd(),
		a.cancelCmd(),
		a.saveCmd(),
		a.goalCmd(),
		a.combinedCmd(),
		a.compareCmd(),
	)
	return cmd
}

// runSpec runs spec for the --user of cmd and prints the result.
func (a *app) runSpec(cmd *cobra.Command, spec whatif.ScenarioSpec) error {
	userID, _ := cmd.Flags().GetString("user")
	if months, _ := cmd.Flags().GetInt("months"); months > 0 && spec.Months == 0 {
		spec.Months = months
	}
	return a.withService(cmd, func(ctx context.Context, svc *insights.Service) (interface{}, error) {
		return svc.RunScenario(ctx, userID, spec)
	})
}

func (a *app) extraPaymentCmd() *cobra.Command {
	var (
		accountID string
		amount    float64
	)
	cmd := &cobra.Command{
		Use:   "extra-payment",
		Short: "Pay extra each month on a credit card",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSpec(cmd, whatif.ScenarioSpec{
				Type:      whatif.ScenarioExtraCreditPayment,
				AccountID: accountID,
				Amount:    amount,
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "credit card account id")
	cmd.Flags().Float64Var(&amount, "amount", 0, "extra monthly payment")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) cancelCmd() *cobra.Command {
	var subs []string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel subscriptions",
		Example: `  spendsense whatif cancel --user user_001 --sub Netflix=15.99 --sub Spotify=9.99`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSubscriptions(subs)
			if err != nil {
				return err
			}
			return a.runSpec(cmd, whatif.ScenarioSpec{
				Type:          whatif.ScenarioSubscriptionCancellation,
				Subscriptions: parsed,
			})
		},
	}
	cmd.Flags().StringArrayVar(&subs, "sub", nil, "subscription to cancel as NAME=MONTHLY_AMOUNT (repeatable)")
	return cmd
}

// parseSubscriptions reads NAME=AMOUNT pairs.
func parseSubscriptions(values []string) ([]whatif.Subscription, error) {
	subs := make([]whatif.Subscription, 0, len(values))
	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 {
			return nil, fmt.Errorf("subscription %q: expected NAME=AMOUNT", v)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(v[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("subscription %q: %w", v, err)
		}
		subs = append(subs, whatif.Subscription{Name: strings.TrimSpace(v[:i]), Amount: amount})
	}
	return subs, nil
}

func (a *app) saveCmd() *cobra.Command {
	var amount, target float64
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save an additional amount each month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSpec(cmd, whatif.ScenarioSpec{
				Type:         whatif.ScenarioIncreasedSavings,
				Amount:       amount,
				TargetAmount: target,
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "additional monthly savings")
	cmd.Flags().Float64Var(&target, "target", 0, "optional savings target")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) goalCmd() *cobra.Command {
	var (
		accountID    string
		targetMonths int
		maxPayment   float64
	)
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Find the payment that clears a card within a number of months",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSpec(cmd, whatif.ScenarioSpec{
				Type:              whatif.ScenarioGoalBasedPayment,
				AccountID:         accountID,
				TargetMonths:      targetMonths,
				MaxMonthlyPayment: maxPayment,
			})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "credit card account id")
	cmd.Flags().IntVar(&targetMonths, "target-months", 12, "months to pay off the balance")
	cmd.Flags().Float64Var(&maxPayment, "max-payment", 0, "largest affordable monthly payment (0 for no cap)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

// scenarioFile is the YAML layout read by the combined and compare commands.
type scenarioFile struct {
	Months    int                   `yaml:"months"`
	Scenarios []whatif.ScenarioSpec `yaml:"scenarios"`
	ScenarioA *whatif.ScenarioSpec  `yaml:"scenario_a"`
	ScenarioB *whatif.ScenarioSpec  `yaml:"scenario_b"`
}

func readScenarioFile(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	return &f, nil
}

func (a *app) combinedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "combined",
		Short: "Run several scenarios from a YAML file and net their effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readScenarioFile(file)
			if err != nil {
				return err
			}
			if len(f.Scenarios) == 0 {
				return fmt.Errorf("%s: no scenarios listed", file)
			}
			return a.runSpec(cmd, whatif.ScenarioSpec{
				Type:      whatif.ScenarioCombined,
				Scenarios: f.Scenarios,
				Months:    f.Months,
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a scenarios list")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare scenario_a and scenario_b from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readScenarioFile(file)
			if err != nil {
				return err
			}
			if f.ScenarioA == nil || f.ScenarioB == nil {
				return fmt.Errorf("%s: scenario_a and scenario_b are required", file)
			}
			userID, _ := cmd.Flags().GetString("user")
			return a.withService(cmd, func(ctx context.Context, svc *insights.Service) (interface{}, error) {
				return svc.Compare(ctx, userID, *f.ScenarioA, *f.ScenarioB)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with scenario_a and scenario_b")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
