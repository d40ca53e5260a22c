package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidsavoie1/params-router/pkg/location"
	"github.com/davidsavoie1/params-router/pkg/pattern"
	"github.com/davidsavoie1/params-router/pkg/query"
	"github.com/davidsavoie1/params-router/pkg/urlstate"
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build PATTERN [key=value...]",
		Short: "Build a URL from a pattern and parameters",
		Long: `Build a relative URL from a path template and key=value parameters.
Keys declared by the template form the pathname; the remainder becomes
the query string.

Example:

  params-router build "/users/:id" id=7 sort=asc
  → /users/7?sort=asc`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := pattern.Compile(args[0])
			if err != nil {
				return err
			}

			params, err := parsePairs(args[1:])
			if err != nil {
				return err
			}

			b := &urlstate.Builder{}
			url, err := b.BuildURL(urlstate.Values(params), m, location.Location{})
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}

	return cmd
}

// parsePairs turns key=value arguments into a parameter mapping,
// applying the same coercion the query codec uses.
func parsePairs(args []string) (location.Params, error) {
	codec := query.Coercing{}
	params := make(location.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		decoded := codec.Decode(key + "=" + value)
		for k, v := range decoded {
			params[k] = v
		}
	}
	return params, nil
}
