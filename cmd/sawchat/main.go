// Command sawchat is a terminal chat client for the data-analysis agent.
//
// Usage:
//
//	API_KEY=... sawchat [flags]
//	API_KEY=... sawchat -p "How many visits last month?"
//
// Settings are layered: built-in defaults, then ~/.sawchat/config.yaml (or
// -config), then the environment (a .env file is loaded first), then flags.
//
// Flags:
//
//	-config string       Path to YAML config file
//	-p string            Ask one question, print the answer and exit
//	-base-url string     Agent service base URL (env API_BASE_URL)
//	-stream-url string   Full URL of the streaming endpoint
//	-api-key string      API key (env API_KEY)
//	-user-id string      User id (env API_USER_ID)
//	-operadora string    Tenant for batch requests (env API_OPERADORA)
//	-mode string         stream or batch (env SAWCHAT_MODE)
//	-timeout duration    Request timeout
//	-pacing duration     Minimum delay between progress updates
//	-download-dir string Directory for saved reports
//	-log string          Log file
//	-log-level string    debug, info, warn, error
//	-log-format string   text or json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/agent"
	"github.com/fwojciec/sawchat/agentapi"
	bt "github.com/fwojciec/sawchat/bubbletea"
	"github.com/fwojciec/sawchat/gobreaker"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

const disabledNoKey = "No API key configured. Set API_KEY or pass -api-key to ask questions."

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, errTurnFailed) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "sawchat: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cli, err := parseFlags(args)
	if err != nil {
		return err
	}

	// A missing .env is normal; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	path, explicit := cli.configPath, true
	if path == "" {
		path, explicit = defaultConfigPath(), false
	}
	if path != "" {
		if err := loadConfigFile(&cfg, path, explicit); err != nil {
			return err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return err
	}
	if err := applyFlags(&cfg, cli.set); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cli.prompt != "" {
		if cfg.APIKey == "" {
			return errors.New("API key not set (use -api-key flag or API_KEY environment variable)")
		}
		loop := newLoop(cfg, logger)
		ask := askFunc(loop.Run)
		if cfg.Mode == modeBatch {
			ask = loop.Ask
		}
		return runOnce(ctx, ask, cli.prompt, cfg.DownloadDir, os.Stdout, os.Stderr)
	}

	if cfg.APIKey == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := promptCredentials(&cfg); err != nil {
			return err
		}
	}
	var disabled string
	if cfg.APIKey == "" {
		disabled = disabledNoKey
	}

	loop := newLoop(cfg, logger)
	session := sawchat.NewSession()
	logger.Info("session started", "session", session.ID, "mode", cfg.Mode, "base_url", cfg.BaseURL)

	m := bt.New(turnFunc(loop, cfg.Mode), session, sawchat.DefaultTheme(), bt.Config{
		DownloadDir: cfg.DownloadDir,
		Disabled:    disabled,
	})
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

type cliArgs struct {
	configPath string
	prompt     string
	// set holds the flags given on the command line, by name.
	set map[string]string
}

func parseFlags(args []string) (cliArgs, error) {
	var cli cliArgs
	flags := flag.NewFlagSet("sawchat", flag.ContinueOnError)
	flags.StringVar(&cli.configPath, "config", "", "Path to YAML config file (default: ~/.sawchat/config.yaml)")
	flags.StringVar(&cli.prompt, "p", "", "Ask one question, print the answer and exit")
	for _, s := range settings {
		flags.String(s.flag, "", s.usage)
	}
	if err := flags.Parse(args); err != nil {
		return cliArgs{}, err
	}
	if flags.NArg() > 0 {
		return cliArgs{}, fmt.Errorf("unexpected arguments: %v (use -p to ask a question)", flags.Args())
	}

	cli.set = make(map[string]string)
	flags.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = f.Value.String()
	})
	return cli, nil
}

// newLoop wires the transport behind the circuit breaker into a turn loop.
// Artifact downloads bypass the breaker.
func newLoop(cfg config, logger *slog.Logger) *agent.Loop {
	opts := []agentapi.Option{
		agentapi.WithBaseURL(cfg.BaseURL),
		agentapi.WithTimeout(cfg.Timeout),
		agentapi.WithUserID(cfg.UserID),
		agentapi.WithOperadora(cfg.Operadora),
		agentapi.WithLogger(logger),
	}
	if cfg.StreamURL != "" {
		opts = append(opts, agentapi.WithStreamURL(cfg.StreamURL))
	}
	client := agentapi.New(cfg.APIKey, opts...)
	guarded := gobreaker.New(client, cfg.Breaker, logger)

	return agent.New(guarded,
		agent.WithBatchAgent(guarded),
		agent.WithFetcher(client),
		agent.WithLogger(logger),
		agent.WithPacing(cfg.Pacing),
	)
}

// turnFunc adapts the loop to the TUI, choosing streaming or batch answers.
func turnFunc(loop *agent.Loop, mode string) bt.TurnFunc {
	ask := askFunc(loop.Run)
	if mode == modeBatch {
		ask = loop.Ask
	}
	return func(ctx context.Context, session *sawchat.Session, prompt string, onEffect func(sawchat.Effect)) error {
		_, err := ask(ctx, session, prompt, agent.WithEffectHandler(onEffect))
		return err
	}
}
