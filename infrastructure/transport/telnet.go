package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ziutek/telnet"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

const (
	DefaultTimeout    = 120 * time.Second // slow DmOS commands need the headroom
	BufferSize        = 4096
	PromptUsername    = "Username:"
	PromptPassword    = "Password:"
	PromptEnable      = ">"
	PromptPrivileged  = "#"
	TerminalLengthCmd = "terminal length 0\n"
)

// TelnetClient manages a Telnet connection to a switch
type TelnetClient struct {
	conn         *telnet.Conn
	config       entities.SwitchConfig
	authSequence []entities.AuthPrompt
	prompt       *promptTracker
	log          *logrus.Entry
}

// NewTelnetClient creates a new Telnet client with the given configuration
func NewTelnetClient(cfg entities.SwitchConfig) *TelnetClient {
	return &TelnetClient{
		config: cfg,
		prompt: newPromptTracker(),
		log:    logrus.WithFields(logrus.Fields{"switch": cfg.Target, "transport": "telnet"}),
	}
}

// SetAuthSequence configures the authentication sequence for this client
func (tc *TelnetClient) SetAuthSequence(prompts []entities.AuthPrompt) {
	tc.authSequence = prompts
}

// Connect establishes a Telnet connection to the switch
func (tc *TelnetClient) Connect(ctx context.Context) error {
	if tc.conn != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return classifyContext(err)
	}
	addr := net.JoinHostPort(tc.config.Target, strconv.Itoa(tc.config.TransportPort()))
	conn, err := telnet.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: failed to connect to %s: %v", entities.ErrUnreachable, tc.config.Target, err)
	}
	tc.conn = conn
	tc.applyDeadline(ctx)
	if tc.config.IsDebugEnabled() {
		tc.log.Debug("connected")
	}

	prompts := tc.authSequence
	if len(prompts) == 0 {
		prompts = []entities.AuthPrompt{
			{WaitFor: PromptUsername, SendCmd: tc.config.Username + "\n"},
			{WaitFor: PromptPassword, SendCmd: tc.config.Password + "\n"},
			{WaitFor: PromptEnable, SendCmd: "enable\n"},
			{WaitFor: PromptPassword, SendCmd: tc.config.EnablePassword + "\n"},
			{WaitFor: PromptPrivileged, SendCmd: TerminalLengthCmd},
			{WaitFor: PromptPrivileged, SendCmd: ""},
		}
	}

	for _, p := range prompts {
		output, err := tc.readUntil(ctx, p.WaitFor, waitFor(p.WaitFor))
		if err != nil {
			tc.Disconnect()
			return fmt.Errorf("failed to wait for %s: %w, output: %s", p.WaitFor, err, output)
		}
		if p.SendCmd != "" {
			if _, err := tc.conn.Write([]byte(p.SendCmd)); err != nil {
				tc.Disconnect()
				return fmt.Errorf("%w: failed to answer %s: %v", entities.ErrSession, p.WaitFor, err)
			}
			if tc.config.IsDebugEnabled() {
				tc.log.Debugf("answered prompt %s", p.WaitFor)
			}
			continue
		}
		tc.prompt.learn(output)
	}
	if tc.config.IsDebugEnabled() && tc.prompt.hostname != "" {
		tc.log.Debugf("prompt hostname %s", tc.prompt.hostname)
	}
	return nil
}

func (tc *TelnetClient) applyDeadline(ctx context.Context) {
	deadline := time.Now().Add(DefaultTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = tc.conn.SetReadDeadline(deadline)
	_ = tc.conn.SetWriteDeadline(deadline)
}

// readUntil reads from the Telnet connection until done accepts the output
// read so far. what names the awaited prompt in errors.
func (tc *TelnetClient) readUntil(ctx context.Context, what string, done func(string) bool) (string, error) {
	buffer := make([]byte, BufferSize)
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(DefaultTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return output.String(), classifyContext(err)
		}
		n, err := tc.conn.Read(buffer)
		if err != nil {
			if ctx.Err() != nil {
				return output.String(), classifyContext(ctx.Err())
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return output.String(), fmt.Errorf("%w: waiting for %s", entities.ErrTimeout, what)
			}
			return output.String(), fmt.Errorf("%w: read error: %v", entities.ErrSession, err)
		}
		if n > 0 {
			output.Write(buffer[:n])
			if tc.config.IsRawOutputEnabled() {
				tc.log.Debugf("read: %s", string(buffer[:n]))
			}
			if done(output.String()) {
				return output.String(), nil
			}
		}
	}
	return output.String(), fmt.Errorf("%w: waiting for %s", entities.ErrTimeout, what)
}

// Disconnect closes the Telnet connection
func (tc *TelnetClient) Disconnect() {
	if tc.conn != nil {
		tc.conn.Close()
		if tc.config.IsDebugEnabled() {
			tc.log.Debug("disconnected")
		}
		tc.conn = nil
	}
}

func (tc *TelnetClient) IsConnected() bool {
	return tc.conn != nil
}

// ExecuteCommand sends a command to the switch and returns its output
func (tc *TelnetClient) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if tc.conn == nil {
		return "", fmt.Errorf("%w: not connected", entities.ErrSession)
	}
	if tc.config.IsDebugEnabled() {
		tc.log.Debugf("executing: %s", cmd)
	}
	tc.applyDeadline(ctx)
	if _, err := tc.conn.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("%w: failed to send %s: %v", entities.ErrSession, cmd, err)
	}
	output, err := tc.readUntil(ctx, "prompt", tc.prompt.commandDone)
	if err != nil {
		// unread output would otherwise leak into the next command
		tc.Disconnect()
		return "", fmt.Errorf("error executing %s: %w", cmd, err)
	}
	output = stripEchoAndPrompt(output)
	if tc.config.IsRawOutputEnabled() {
		tc.log.Debugf("output for '%s':\n%s", cmd, output)
	}
	return output, nil
}

// stripEchoAndPrompt drops the echoed command line and the trailing prompt
// line. Callers only pass output that ended with the prompt.
func stripEchoAndPrompt(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) > 1 {
		return strings.Join(lines[1:len(lines)-1], "\n")
	}
	return ""
}

// classifyContext maps a context error onto the timeout sentinel.
func classifyContext(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entities.ErrTimeout, err)
	}
	return err
}
