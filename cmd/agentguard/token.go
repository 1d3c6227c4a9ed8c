package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/agentguard/auth"
	"github.com/jonwraymond/agentguard/token"
)

func newTokenCmd(u *ui, g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encode or decode security tokens",
	}
	cmd.AddCommand(newTokenEncodeCmd(u, g), newTokenDecodeCmd(u, g))
	return cmd
}

func newTokenEncodeCmd(u *ui, g *globals) *cobra.Command {
	var (
		userID, serviceID, serviceType, from string
		roles, perms                         []string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Issue a signed token",
		Example: `  agentguard token encode --user alice --role DEVELOPER --perm AGENT_READ \
    --service-id svc-1 --service-type internal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			out := cmd.OutOrStdout()
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			warnUnknown(cmd.ErrOrStderr(), u, roles, perms)

			b := auth.NewBuilder(a.Codec())
			flags := cmd.Flags()
			if flags.Changed("user") {
				b.UserID(userID)
			}
			if flags.Changed("role") {
				b.RoleNames(roles...)
			}
			if flags.Changed("perm") {
				b.PermissionNames(perms...)
			}
			if flags.Changed("service-id") {
				b.ServiceID(serviceID)
			}
			if flags.Changed("service-type") {
				b.ServiceType(serviceType)
			}
			if from != "" {
				b.Token(from)
			}
			sc, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			if claim := sc.Payload().MissingClaim(); claim != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), u.warn("warning:"), "token has no", claim, "claim and will not authenticate")
			}
			fmt.Fprintln(out, sc.Token())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "user id claim")
	f.StringSliceVar(&roles, "role", nil, "role name (repeatable)")
	f.StringSliceVar(&perms, "perm", nil, "permission name (repeatable)")
	f.StringVar(&serviceID, "service-id", "", "service id claim")
	f.StringVar(&serviceType, "service-type", "", "service type claim")
	f.StringVar(&from, "from", "", "existing token whose claims fill unset fields")
	return cmd
}

func newTokenDecodeCmd(u *ui, g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "decode TOKEN",
		Short: "Verify a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out := cmd.OutOrStdout()
			a, err := g.load(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			p, err := a.Codec().Decode(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				fmt.Fprintln(out, u.err("invalid:"), token.Classify(err))
				return errRejected
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			printPayload(out, u, p)
			if claim := p.MissingClaim(); claim != "" {
				fmt.Fprintln(out, u.warn("incomplete:"), "missing", claim)
				return errRejected
			}
			fmt.Fprintln(out, u.ok("valid"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print claims as JSON")
	return cmd
}

func printPayload(w io.Writer, u *ui, p token.Payload) {
	row := func(k, v string) {
		if v == "" {
			v = u.dim("<none>")
		}
		fmt.Fprintf(w, "%s %s\n", u.info(fmt.Sprintf("%-12s", k)), v)
	}
	row(token.KeyUserID, p.UserID)
	row(token.KeyRoles, strings.Join(p.Roles, ", "))
	row(token.KeyPermissions, strings.Join(p.Permissions, ", "))
	row(token.KeyServiceID, p.ServiceID)
	row(token.KeyServiceType, p.ServiceType)
}

func warnUnknown(w io.Writer, u *ui, roles, perms []string) {
	for _, r := range roles {
		if _, ok := auth.ParseRole(strings.TrimSpace(r)); !ok {
			fmt.Fprintln(w, u.warn("warning:"), "dropping unknown role", r)
		}
	}
	for _, p := range perms {
		if _, ok := auth.ParsePermission(strings.TrimSpace(p)); !ok {
			fmt.Fprintln(w, u.warn("warning:"), "dropping unknown permission", p)
		}
	}
}
