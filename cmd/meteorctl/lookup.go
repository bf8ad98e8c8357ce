package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ronin-2099/Chance-of-Meteors/internal/assess"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/deflection"
	"github.com/Ronin-2099/Chance-of-Meteors/internal/neows"
)

type lookupOutput struct {
	Asteroid        neows.Summary      `json:"asteroid"`
	Deflection      *deflection.Report `json:"deflection"`
	DeflectionError string             `json:"deflection_error,omitempty"`
}

func newLookupCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON     bool
		policyPath string
	)

	cmd := &cobra.Command{
		Use:   "lookup <id>",
		Short: "Show an asteroid and, when hazardous, its perihelion-raising burn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := loadCalculator(policyPath)
			if err != nil {
				return err
			}

			obj, err := opts.client().Lookup(cmd.Context(), args[0])
			if errors.Is(err, neows.ErrNotFound) {
				return fmt.Errorf("asteroid %s not found", args[0])
			}
			if err != nil {
				return err
			}

			out := lookupOutput{Asteroid: neows.Summarize(obj)}
			if obj.IsPotentiallyHazardous {
				report, err := assess.EvaluateObject(calc, obj)
				if err != nil {
					out.DeflectionError = err.Error()
				} else {
					out.Deflection = &report
				}
			}

			if asJSON {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal output: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Print(renderSummary(out.Asteroid))
			switch {
			case out.Deflection != nil:
				cmd.Println()
				cmd.Print(renderReport(*out.Deflection))
			case out.DeflectionError != "":
				cmd.Println()
				cmd.Println("Deflection: " + out.DeflectionError)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().StringVar(&policyPath, "policy", "", "safety policy TOML file")
	return cmd
}
