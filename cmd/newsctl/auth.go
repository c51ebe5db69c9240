package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	password := fs.String("password", "", "dashboard password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	pw := *password
	if pw == "" {
		line, err := c.prompt("Password: ")
		if err != nil {
			return err
		}
		pw = line
	}

	ok, err := c.gate.Login(ctx, c.store, pw)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid password")
	}
	s, _, err := c.gate.Session(ctx, c.store)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Logged in until %s\n", s.ExpiresAt.Local().Format("Jan 2, 2006 15:04"))
	return nil
}

func (c *cli) logout(ctx context.Context) error {
	if err := c.gate.Logout(ctx, c.store); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Logged out")
	return nil
}

// prompt writes label to stderr and reads one trimmed line from stdin. An
// empty input yields "".
func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.stderr, label)
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
