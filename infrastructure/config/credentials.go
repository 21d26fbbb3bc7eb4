package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// Environment variables consulted for credentials missing from the file.
const (
	EnvUsername       = "PORTKEEPER_USERNAME"
	EnvPassword       = "PORTKEEPER_PASSWORD"
	EnvEnablePassword = "PORTKEEPER_ENABLE_PASSWORD"
)

// Prompter asks the operator for a value.
type Prompter interface {
	Prompt(label string, secret bool) (string, error)
}

// TermPrompter reads from a terminal, hiding secrets.
type TermPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTermPrompter prompts on stdin/stderr.
func NewTermPrompter() *TermPrompter {
	return &TermPrompter{In: os.Stdin, Out: os.Stderr}
}

// Prompt prints label and reads one line. It fails when In is not a terminal
// so unattended runs never block.
func (p *TermPrompter) Prompt(label string, secret bool) (string, error) {
	fd := int(p.In.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s not configured and no terminal to prompt on", strings.ToLower(label))
	}
	fmt.Fprintf(p.Out, "%s: ", label)
	if secret {
		value, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(value), nil
	}
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// ResolveCredentials fills blank global credentials from the environment and
// then from prompter, and hands them down to switches that set none. A
// global is only demanded when some switch would be left without it, or
// when no switches are configured. An empty enable password falls back to
// the login password.
func (c *Config) ResolveCredentials(getenv func(string) string, prompter Prompter) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	fields := []struct {
		global *string
		of     func(sw entities.SwitchConfig) string
		env    string
		label  string
		secret bool
	}{
		{&c.Username, func(sw entities.SwitchConfig) string { return sw.Username }, EnvUsername, "Username", false},
		{&c.Password, func(sw entities.SwitchConfig) string { return sw.Password }, EnvPassword, "Password", true},
		{&c.EnablePassword, func(sw entities.SwitchConfig) string { return sw.EnablePassword }, EnvEnablePassword, "Enable password", true},
	}
	for i, f := range fields {
		if *f.global != "" || !c.anySwitchLacks(f.of) {
			continue
		}
		if v := getenv(f.env); v != "" {
			*f.global = v
			continue
		}
		if prompter == nil {
			if i == len(fields)-1 {
				// enable password falls back below
				continue
			}
			return fmt.Errorf("%s not configured; set %s", strings.ToLower(f.label), f.env)
		}
		v, err := prompter.Prompt(f.label, f.secret)
		if err != nil {
			return err
		}
		*f.global = v
	}
	if c.EnablePassword == "" {
		c.EnablePassword = c.Password
	}

	for i, sw := range c.Switches {
		if sw.Username == "" {
			sw.Username = c.Username
		}
		if sw.Password == "" {
			sw.Password = c.Password
		}
		if sw.EnablePassword == "" {
			sw.EnablePassword = c.EnablePassword
		}
		c.Switches[i] = sw
	}
	return nil
}

func (c *Config) anySwitchLacks(of func(entities.SwitchConfig) string) bool {
	if len(c.Switches) == 0 {
		return true
	}
	for _, sw := range c.Switches {
		if of(sw) == "" {
			return true
		}
	}
	return false
}
