package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"einvoice-news/internal/infra/github"
	refreshUC "einvoice-news/internal/usecase/refresh"
)

func (c *cli) refresh(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := c.requireSession(ctx); err != nil {
		return err
	}
	if !c.cfg.GitHub.Enabled() {
		return errors.New("refresh is not configured: set GITHUB_OWNER, GITHUB_REPO and GITHUB_WORKFLOW")
	}

	client, err := github.NewClient(github.Config{
		BaseURL:  c.cfg.GitHub.APIURL,
		Owner:    c.cfg.GitHub.Owner,
		Repo:     c.cfg.GitHub.Repo,
		Workflow: c.cfg.GitHub.Workflow,
		Timeout:  c.cfg.GitHub.Timeout,
	})
	if err != nil {
		return err
	}
	dash, err := c.dashboard(ctx)
	if err != nil {
		return err
	}

	orch := refreshUC.New(client, dash, refreshUC.Config{
		Ref:          c.cfg.GitHub.Ref,
		TriggerDelay: c.cfg.Refresh.TriggerDelay,
		PollInterval: c.cfg.Refresh.PollInterval,
		MaxAttempts:  c.cfg.Refresh.MaxAttempts,
		PublishDelay: c.cfg.Refresh.PublishDelay,
	}, refreshUC.WithLogger(c.logger))

	prompt := refreshUC.PromptFunc(func(context.Context) (string, error) {
		return c.prompt("GitHub token with actions:write (empty to cancel): ")
	})

	stop := c.progress(orch)
	out, err := orch.Run(ctx, c.store, prompt)
	stop()

	switch {
	case errors.Is(err, refreshUC.ErrCredentialDeclined):
		fmt.Fprintln(c.stdout, "Refresh cancelled")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(c.stdout, orch.Status().Message)
	if out.Run.HTMLURL != "" {
		fmt.Fprintf(c.stdout, "Run: %s\n", out.Run.HTMLURL)
	}
	return nil
}

// progress prints every new status message until the returned stop is called.
func (c *cli) progress(orch *refreshUC.Orchestrator) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		last := ""
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				st := orch.Status()
				if st.Refreshing && st.Message != "" && st.Message != last {
					fmt.Fprintf(c.stderr, "%s\n", st.Message)
					last = st.Message
				}
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
