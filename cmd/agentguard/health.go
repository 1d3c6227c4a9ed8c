package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/agentguard/health"
)

func newHealthCmd(u *ui, g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Run the health checks once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			out := cmd.OutOrStdout()
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			report := a.Health().Run(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(health.NewResponse(report)); err != nil {
					return err
				}
			} else {
				names := make([]string, 0, len(report.Checks))
				for name := range report.Checks {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					r := report.Checks[name]
					fmt.Fprintf(out, "%-14s %-20s %s\n", name, paint(u, r.Status), r.Message)
				}
				fmt.Fprintf(out, "%-14s %s\n", u.title("overall"), paint(u, report.Status))
			}
			if report.Status == health.StatusUnhealthy {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func paint(u *ui, s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return u.ok(s)
	case health.StatusDegraded:
		return u.warn(s)
	default:
		return u.err(s)
	}
}
