package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/agentguard/auth"
)

func newCheckCmd(u *ui, g *globals) *cobra.Command {
	var (
		resource, domain, action string
		roles, perms             []string
	)
	cmd := &cobra.Command{
		Use:   "check [TOKEN]",
		Short: "Run a token through the admission gate",
		Long: `Run a token through the admission gate and print the decision.

Requirements come from --role and --perm when given, otherwise from the
configured resource table entry for --resource. Without a token the request
is anonymous. The command exits non-zero when the request is rejected.`,
		Example: "  agentguard check \"$TOKEN\" --resource /v1/agents/42 --role DEVELOPER --perm AGENT_READ",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := cmd.OutOrStdout()
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			var res auth.Resource = a.Resources().Lookup(resource)
			if len(roles) > 0 || len(perms) > 0 {
				req, err := auth.ParseRequirements(roles, perms)
				if err != nil {
					return err
				}
				res = req
			}

			req := &auth.Request{Domain: domain, Resource: resource, Action: action}
			if len(args) == 1 {
				req.Security = auth.FromToken(strings.TrimSpace(args[0]))
			}

			d := a.Gate().Check(cmd.Context(), req, res)
			fmt.Fprintf(out, "%s %s\n", u.info(fmt.Sprintf("%-9s", "user")), d.UserID)
			fmt.Fprintf(out, "%s %s\n", u.info(fmt.Sprintf("%-9s", "requires")), describe(u, res))
			if d.Allowed() {
				fmt.Fprintf(out, "%s %s\n", u.info(fmt.Sprintf("%-9s", "decision")), u.ok(d.Outcome))
				return nil
			}
			fmt.Fprintf(out, "%s %s %s\n", u.info(fmt.Sprintf("%-9s", "decision")), u.err(d.Outcome), u.dim("("+d.Reason+")"))
			return errRejected
		},
	}
	f := cmd.Flags()
	f.StringVar(&resource, "resource", "", "resource name or path")
	f.StringVar(&domain, "domain", "", "agent domain")
	f.StringVar(&action, "action", "", "requested action")
	f.StringSliceVar(&roles, "role", nil, "required role, any of (repeatable)")
	f.StringSliceVar(&perms, "perm", nil, "required permission, any of (repeatable)")
	return cmd
}

func describe(u *ui, res auth.Resource) string {
	var parts []string
	if rs := res.RequiredRoles(); len(rs) > 0 {
		parts = append(parts, "roles "+strings.Join(rs, "|"))
	}
	if ps := res.RequiredPermissions(); len(ps) > 0 {
		parts = append(parts, "permissions "+strings.Join(ps, "|"))
	}
	if len(parts) == 0 {
		return u.dim("nothing")
	}
	return strings.Join(parts, " or ")
}
