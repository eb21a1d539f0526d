package main

import (
	"fmt"

	countries "github.com/goliatone/go-countries"
	"github.com/goliatone/go-countries/schema/openapi"
	"github.com/spf13/cobra"
)

func newAllCmd(a *app) *cobra.Command {
	var codesOnly bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "List every country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if codesOnly {
				keys, err := a.call("keys")
				if err != nil {
					return err
				}
				return printLines(cmd, keys.([]string))
			}
			all, err := a.call("all")
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), all)
		},
	}
	cmd.Flags().BoolVar(&codesOnly, "codes", false, "print only country codes")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Print the merged record of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.call("get", args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newTraceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trace CODE PATH",
		Short: "Show which dataset layer supplies a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trace, err := a.repo.Trace(args[0], args[1])
			if err != nil {
				return err
			}
			payload, err := trace.ToJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", payload)
			return err
		},
	}
}

func newCurrenciesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies [CODE]",
		Short: "Print the merged currency set, or the currencies of one country",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				value any
				err   error
			)
			if len(args) == 1 {
				value, err = a.call("loadCurrenciesForCountry", args[0])
			} else {
				value, err = a.call("currencies")
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), value)
		},
	}
}

func newFlagCmd(a *app) *cobra.Command {
	var markup bool
	cmd := &cobra.Command{
		Use:   "flag CCA3",
		Short: "Print the SVG flag of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markup {
				flags, err := a.call("makeAllFlags", args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), flags)
			}
			svg, err := a.call("getFlagSvg", args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
			return err
		},
	}
	cmd.Flags().BoolVar(&markup, "markup", false, "print every flag markup variant for a cca2 code")
	return cmd
}

func newTimezonesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "timezones CODE",
		Short: "Print the timezones of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zones, err := a.call("findTimezones", args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), zones)
		},
	}
}

func newBoundsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds CCA3",
		Short: "Print the bounding box of a country boundary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bounds, err := a.call("geometryBounds", args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), bounds)
		},
	}
}

func newWhereCmd(a *app) *cobra.Command {
	var expression string
	cmd := &cobra.Command{
		Use:   "where [FIELD VALUE]",
		Short: "Print the codes of countries matching a field value or an expression",
		Example: `  countries where region Europe
  countries where --expr 'area > 1000000'`,
		Args: func(cmd *cobra.Command, args []string) error {
			if expression != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				value any
				err   error
			)
			if expression != "" {
				value, err = a.call("whereExpr", expression)
			} else {
				value, err = a.call("where", args[0], args[1])
			}
			if err != nil {
				return err
			}
			return printLines(cmd, value.(interface{ Keys() []string }).Keys())
		},
	}
	cmd.Flags().StringVar(&expression, "expr", "", "predicate evaluated against every record")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var maxDistance int
	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Find a country by common, official or alternative name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.call("findByName", args[0], maxDistance)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().IntVar(&maxDistance, "distance", 0, "maximum edit distance for fuzzy matches")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call NAME [ARG...]",
		Short: "Run a repository operation by name",
		Example: `  countries call getGeometry usa
  countries call whereSubregion "Western Europe"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := make([]any, len(args)-1)
			for i, arg := range args[1:] {
				callArgs[i] = arg
			}
			value, err := a.call(args[0], callArgs...)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), value)
		},
	}
}

func printLines(cmd *cobra.Command, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return nil
}

func newSchemaCmd(a *app) *cobra.Command {
	var typed bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print an OpenAPI document describing country records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			generator := openapi.NewGenerator(
				openapi.WithInfo("", "", openapi.WithInfoDescription("Bundled country reference data")),
			)
			var (
				doc map[string]any
				err error
			)
			if typed {
				doc, err = generator.Generate(countries.Country{})
			} else {
				doc, err = generator.FromFields(a.repo.All().Fields())
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().BoolVar(&typed, "typed", false, "describe the hydrated Country type instead of the loaded dataset")
	return cmd
}
