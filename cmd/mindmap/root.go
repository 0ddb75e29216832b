package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/auth"
	"hackverse-mindmap/internal/client"
	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/infrastructure/logging"
	"hackverse-mindmap/internal/infrastructure/observability"
	"hackverse-mindmap/internal/layout"
)

var version = "0.1.0"

var (
	brand  = color.New(color.FgHiGreen, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

// globals are the flags shared by every command.
type globals struct {
	configPath string
	env        string
	baseURL    string
	userID     string
	token      string
	direction  string
	verbose    bool

	cfg       *config.Config
	log       *zap.Logger
	collector *observability.Collector
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "mindmap",
		Short:         "Lay out, render, generate and edit Hackverse mind maps",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("mindmap {{ .Version }}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config-path", "", "Directory holding base.yaml and <env>.yaml")
	flags.StringVar(&g.env, "env", "", "Environment (development, staging, production)")
	flags.StringVar(&g.baseURL, "base-url", "", "Resource service URL")
	flags.StringVar(&g.userID, "user", "", "User the client acts for")
	flags.StringVar(&g.token, "token", "", "Bearer token; a development token is signed when empty")
	flags.StringVar(&g.direction, "direction", "", "Layout direction (TB, LR, BT, RL)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Log client activity to stderr")

	root.AddCommand(
		newLayoutCommand(g),
		newRenderCommand(g),
		newGenerateCommand(g),
		newFetchCommand(g),
		newListCommand(g),
		newSaveCommand(g),
		newEditCommand(g),
		newTokenCommand(g),
		newServeCommand(g),
	)
	return root
}

// config loads the layered configuration once and applies flag overrides.
func (g *globals) config() (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.NewLoader(g.configPath, config.Environment(g.env)).Load()
	if err != nil {
		return nil, err
	}
	if g.baseURL != "" {
		cfg.Client.BaseURL = g.baseURL
	}
	if g.userID != "" {
		cfg.Client.UserID = g.userID
	}
	if g.token != "" {
		cfg.Client.Token = g.token
	}
	if g.direction != "" {
		cfg.Layout.Direction = g.direction
	}
	g.cfg = cfg
	return cfg, nil
}

func (g *globals) logger() *zap.Logger {
	if g.log != nil {
		return g.log
	}
	g.log = zap.NewNop()
	if g.verbose {
		if logger, _, err := logging.New(config.Logging{Level: "debug", Format: "console"}, config.Development); err == nil {
			g.log = logger
		}
	}
	return g.log
}

// metrics returns the collector shared by the client and the editor canvas.
func (g *globals) metrics(cfg *config.Config) *observability.Collector {
	if g.collector == nil {
		g.collector = observability.NewCollector(cfg.Metrics.Namespace)
	}
	return g.collector
}

func (g *globals) layoutDirection(cfg *config.Config) (layout.Direction, error) {
	if cfg.Layout.Direction == "" {
		return layout.TopBottom, nil
	}
	return layout.ParseDirection(cfg.Layout.Direction)
}

// client builds a resource service client for the configured user. Without
// a token one is signed with the configured secret, which only the
// development service accepts.
func (g *globals) client(cfg *config.Config) (*client.Client, error) {
	if cfg.Client.UserID == "" {
		return nil, fmt.Errorf("no user configured: pass --user or set MINDMAP_USER_ID")
	}
	var tokens client.TokenSource
	switch {
	case cfg.Client.Token != "":
		tokens = client.StaticToken(cfg.Client.Token)
	case cfg.Auth.Enabled:
		signer, err := g.signer(cfg)
		if err != nil {
			return nil, err
		}
		tokens = client.SignerTokenSource{Signer: signer, UserID: cfg.Client.UserID}
	}
	return client.New(client.Config{
		BaseURL: cfg.Client.BaseURL,
		UserID:  cfg.Client.UserID,
		Timeout: cfg.Client.Timeout,
		Breaker: cfg.CircuitBreaker,
	}, tokens, client.WithLogger(g.logger()), client.WithMetrics(g.metrics(cfg)))
}

func (g *globals) signer(cfg *config.Config) (*auth.Signer, error) {
	return auth.NewSigner(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL,
	})
}

// openInput opens path for reading; "-" and "" read stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

// openOutput opens path for writing; "-" and "" write stdout.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
