package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidsavoie1/params-router/pkg/location"
	"github.com/davidsavoie1/params-router/pkg/pattern"
	"github.com/davidsavoie1/params-router/pkg/urlstate"
)

func matchCmd() *cobra.Command {
	var pathOnly bool

	cmd := &cobra.Command{
		Use:   "match PATTERN URL",
		Short: "Extract parameters from a URL against a pattern",
		Long: `Match a relative URL against a path template and print the merged
parameter mapping as JSON.

Examples:

  params-router match "/users/:id" "/users/7?sort=asc"
  params-router match --path-only "/users/:id" "/users/7?sort=asc"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := pattern.Compile(args[0])
			if err != nil {
				return err
			}

			loc := location.Parse(args[1])
			ext := &urlstate.Extractor{}

			var params location.Params
			if pathOnly {
				params = ext.ExtractOwn(loc, m)
			} else {
				params = ext.ExtractAll(loc, m)
			}

			out, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pathOnly, "path-only", false, "Extract pathname parameters only")

	return cmd
}
