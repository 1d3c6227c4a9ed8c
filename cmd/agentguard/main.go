// Command agentguard issues, inspects and checks agent security tokens and
// serves the admission gate over HTTP.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonwraymond/agentguard/app"
	"github.com/jonwraymond/agentguard/config"
	"github.com/jonwraymond/agentguard/secret"
	"github.com/jonwraymond/agentguard/token"
)

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath   string
	envFiles     []string
	secret       string
	promptSecret bool

	stdin io.Reader
}

// errRejected signals a negative result that has already been reported.
var errRejected = errors.New("rejected")

func main() {
	root := newRootCmd(newUI(), os.Stdin)
	if err := root.Execute(); err != nil {
		// errRejected on its own has already been reported.
		if err != errRejected {
			fmt.Fprintln(os.Stderr, newUI().err("error:"), err)
		}
		os.Exit(1)
	}
}

func newRootCmd(u *ui, stdin io.Reader) *cobra.Command {
	g := &globals{stdin: stdin}

	root := &cobra.Command{
		Use:   "agentguard",
		Short: "agentguard CLI",
		Long:  "agentguard issues and verifies signed agent security tokens and admits requests against role and permission requirements.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", os.Getenv("AGENTGUARD_CONFIG"), "YAML configuration file")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "dotenv files loaded into the environment (missing files are skipped)")
	root.PersistentFlags().StringVar(&g.secret, "secret", "", "signing secret (overrides "+token.EnvSecret+"; prefer --prompt-secret)")
	root.PersistentFlags().BoolVar(&g.promptSecret, "prompt-secret", false, "read the signing secret from the terminal")

	root.AddCommand(
		newTokenCmd(u, g),
		newCheckCmd(u, g),
		newHealthCmd(u, g),
		newServeCmd(u, g),
	)
	return root
}

// load builds the application from flags and configuration.
func (g *globals) load(ctx context.Context, out io.Writer) (*app.App, error) {
	cfg, err := config.Load(g.configPath, g.envFiles...)
	if err != nil {
		return nil, err
	}

	var opts []app.Option
	s := g.secret
	if g.promptSecret {
		if s, err = g.readSecret(out); err != nil {
			return nil, err
		}
	}
	if s != "" {
		props := secret.NewProperties()
		props.Set(token.PropertySecret, s)
		cfg.Secret.Refs = []string{secret.Ref("properties", token.PropertySecret)}
		cfg.Secret.PropertiesFile, cfg.Secret.DotenvFile = "", ""
		opts = append(opts, app.WithProperties(props))
	}
	return app.New(ctx, *cfg, opts...)
}

type closer interface {
	Close(ctx context.Context) error
}

// closeApp closes c within app.DefaultCloseTimeout and joins any failure,
// such as an audit drain timeout, into *errp.
func closeApp(c closer, errp *error) {
	ctx, cancel := context.WithTimeout(context.Background(), app.DefaultCloseTimeout)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		*errp = errors.Join(*errp, fmt.Errorf("close: %w", err))
	}
}

func (g *globals) readSecret(out io.Writer) (string, error) {
	fmt.Fprint(out, "Signing secret: ")
	defer fmt.Fprintln(out)

	if f, ok := g.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(g.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
