package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/assess"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/config"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
)

func newDeflectCmd(opts *rootOptions) *cobra.Command {
	var (
		sma, ecc   string
		policyPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "deflect",
		Short: "Compute the burn at aphelion that lifts perihelion above the safety threshold",
		Example: `  meteorctl deflect --sma 1.5 --ecc 0.3
  meteorctl deflect --sma 1.5 --ecc 0.3 --policy policy.toml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := loadCalculator(policyPath)
			if err != nil {
				return err
			}

			report, err := assess.EvaluateRaw(calc, sma, ecc)
			if err != nil {
				return err
			}
			opts.logger.Debug("deflection computed", "status", report.Status)

			if asJSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal report: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}
			cmd.Print(renderReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&sma, "sma", "", "semi-major axis in AU")
	cmd.Flags().StringVar(&ecc, "ecc", "", "eccentricity")
	cmd.Flags().StringVar(&policyPath, "policy", "", "safety policy TOML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.MarkFlagRequired("sma")
	cmd.MarkFlagRequired("ecc")
	return cmd
}

func loadCalculator(policyPath string) (*deflection.Calculator, error) {
	policy := deflection.DefaultPolicy
	if policyPath != "" {
		p, err := config.LoadPolicyFile(policyPath)
		if err != nil {
			return nil, err
		}
		policy = p
	}
	return deflection.NewCalculator(deflection.SI, policy)
}
