// Command newsctl queries the e-invoicing news datasets and drives a crawl
// refresh from the terminal.
//
// Usage:
//
//	newsctl [-store path] login [-password secret]
//	newsctl [-store path] logout
//	newsctl [-store path] query [-region EU] [-source id] [-category vat] [-days 7] [-q text] [-json]
//	newsctl [-store path] refresh
//
// Configuration comes from the same environment variables and
// DASHBOARD_CONFIG_FILE as the API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"einvoice-news/internal/config"
	"einvoice-news/internal/infra/adapter/persistence/file"
	"einvoice-news/internal/observability/logging"
	"einvoice-news/internal/repository"
	authUC "einvoice-news/internal/usecase/auth"
)

// errUsage is returned for bad command lines; the usage has been printed.
var errUsage = errors.New("usage error")

const usage = `Usage: newsctl [-store path] <command> [flags]

Commands:
  login     start a session (prompts for the dashboard password)
  logout    end the session
  query     print the filtered articles by section
  refresh   trigger the crawl workflow and wait for new data
`

// cli carries the process streams so commands can be exercised in tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	cfg    *config.Config
	store  repository.StorageRepository
	gate   *authUC.Gate
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("newsctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	storePath := global.String("store", "", "storage file (default: user config dir)")
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	logger := logging.NewTextLogger()
	cfg, err := config.Load(logger, nil)
	if err != nil {
		return err
	}

	path := *storePath
	if path == "" {
		if path, err = file.DefaultPath(); err != nil {
			return err
		}
	}

	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		cfg:    cfg,
		store:  file.NewStorageRepo(path),
		gate: authUC.NewGate(cfg.Auth.Password,
			authUC.WithTTL(cfg.Auth.SessionTTL),
			authUC.WithLogger(logger)),
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return c.logout(ctx)
	case "query":
		return c.query(ctx, rest)
	case "refresh":
		return c.refresh(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		global.Usage()
		return errUsage
	}
}

// requireSession fails unless a session is active in the store.
func (c *cli) requireSession(ctx context.Context) error {
	ok, err := c.gate.CheckAuth(ctx, c.store)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("login required: run 'newsctl login' first")
	}
	return nil
}
