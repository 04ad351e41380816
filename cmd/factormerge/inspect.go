package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hupe1980/factormerge"
	"github.com/spf13/cobra"
)

func newInspectCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <model>",
		Short: "Print the shape of a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := setup(cmd, *flags)
			if err != nil {
				return err
			}
			defer e.resolver.Close()

			ms, name, err := e.resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}

			summary, err := factormerge.New(factormerge.WithLogger(e.logger)).
				Inspect(ctx, factormerge.Ref{Store: ms, Name: name})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
