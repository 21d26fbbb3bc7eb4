package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// SSHClient manages an SSH session with a switch
type SSHClient struct {
	config  entities.SwitchConfig
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	chunks  <-chan sshChunk
	stop    chan struct{}
	netConn net.Conn
	prompt  *promptTracker
	log     *logrus.Entry
}

// sshChunk is one read from the shell's stdout.
type sshChunk struct {
	data []byte
	err  error
}

// NewSSHClient creates a new SSH client with the given configuration
func NewSSHClient(cfg entities.SwitchConfig) *SSHClient {
	return &SSHClient{
		config: cfg,
		prompt: newPromptTracker(),
		log:    logrus.WithFields(logrus.Fields{"switch": cfg.Target, "transport": "ssh"}),
	}
}

// clientConfig accepts the legacy algorithms older access switches still
// negotiate.
func (sc *SSHClient) clientConfig() *ssh.ClientConfig {
	password := sc.config.Password
	return &ssh.ClientConfig{
		User: sc.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DefaultTimeout,
		Config: ssh.Config{
			KeyExchanges: []string{
				"curve25519-sha256",
				"ecdh-sha2-nistp256",
				"ecdh-sha2-nistp384",
				"diffie-hellman-group14-sha256",
				"diffie-hellman-group14-sha1",
				"diffie-hellman-group1-sha1",
			},
			Ciphers: []string{
				"aes128-gcm@openssh.com",
				"aes128-ctr",
				"aes192-ctr",
				"aes256-ctr",
				"aes128-cbc",
				"3des-cbc",
			},
			MACs: []string{
				"hmac-sha2-256-etm@openssh.com",
				"hmac-sha2-256",
				"hmac-sha1",
				"hmac-sha1-96",
			},
		},
		HostKeyAlgorithms: []string{
			"rsa-sha2-256",
			"rsa-sha2-512",
			"ssh-rsa",
			"ecdsa-sha2-nistp256",
			"ssh-ed25519",
		},
	}
}

func (sc *SSHClient) Connect(ctx context.Context) error {
	if sc.IsConnected() {
		return nil
	}
	addr := net.JoinHostPort(sc.config.Target, strconv.Itoa(sc.config.TransportPort()))

	dialer := &net.Dialer{Timeout: DefaultTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return classifyContext(ctx.Err())
		}
		return fmt.Errorf("%w: failed to connect to %s via SSH: %v", entities.ErrUnreachable, sc.config.Target, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = rawConn.SetDeadline(deadline)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sc.clientConfig())
	if err != nil {
		rawConn.Close()
		return fmt.Errorf("%w: failed to establish SSH client connection to %s: %v", entities.ErrSession, sc.config.Target, err)
	}
	_ = rawConn.SetDeadline(time.Time{})

	client := ssh.NewClient(clientConn, chans, reqs)

	fail := func(format string, err error) error {
		client.Close()
		rawConn.Close()
		return fmt.Errorf("%w: "+format, entities.ErrSession, sc.config.Target, err)
	}

	session, err := client.NewSession()
	if err != nil {
		return fail("failed to create SSH session for %s: %v", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 40, modes); err != nil {
		session.Close()
		return fail("failed to request PTY for %s: %v", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return fail("failed to get stdin pipe for %s: %v", err)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return fail("failed to get stdout pipe for %s: %v", err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		return fail("failed to start shell for %s: %v", err)
	}

	chunks := make(chan sshChunk)
	sc.client = client
	sc.session = session
	sc.stdin = stdin
	sc.chunks = chunks
	sc.stop = make(chan struct{})
	sc.netConn = rawConn
	go pumpOutput(stdout, chunks, sc.stop)

	if sc.config.IsDebugEnabled() {
		sc.log.Debug("connected")
	}

	initial, err := sc.readUntil(ctx, "login prompt", func(buf string) bool {
		return endsWith(buf, PromptPrivileged) || endsWith(buf, PromptEnable)
	})
	if err != nil {
		sc.Disconnect()
		return err
	}

	if !endsWith(initial, PromptPrivileged) {
		if sc.config.IsDebugEnabled() {
			sc.log.Debug("elevating to privileged mode")
		}
		if err := sc.send("enable\n"); err != nil {
			sc.Disconnect()
			return fmt.Errorf("%w: failed to send enable command to %s: %v", entities.ErrSession, sc.config.Target, err)
		}
		if _, err := sc.readUntil(ctx, PromptPassword, waitFor(PromptPassword)); err != nil {
			sc.Disconnect()
			return err
		}
		if err := sc.send(sc.config.EnablePassword + "\n"); err != nil {
			sc.Disconnect()
			return fmt.Errorf("%w: failed to send enable password to %s: %v", entities.ErrSession, sc.config.Target, err)
		}
		if _, err := sc.readUntil(ctx, PromptPrivileged, waitFor(PromptPrivileged)); err != nil {
			sc.Disconnect()
			return err
		}
	}

	if err := sc.send(TerminalLengthCmd); err != nil {
		sc.Disconnect()
		return fmt.Errorf("%w: failed to send terminal length command to %s: %v", entities.ErrSession, sc.config.Target, err)
	}
	ready, err := sc.readUntil(ctx, PromptPrivileged, waitFor(PromptPrivileged))
	if err != nil {
		sc.Disconnect()
		return err
	}
	sc.prompt.learn(ready)
	return nil
}

func (sc *SSHClient) Disconnect() {
	if sc.session != nil {
		sc.session.Close()
		sc.session = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
	}
	if sc.netConn != nil {
		sc.netConn.Close()
		sc.netConn = nil
	}
	if sc.stop != nil {
		close(sc.stop)
		sc.stop = nil
	}
	sc.stdin = nil
	sc.chunks = nil
	if sc.config.IsDebugEnabled() {
		sc.log.Debug("disconnected")
	}
}

func (sc *SSHClient) IsConnected() bool {
	return sc.session != nil && sc.client != nil
}

func (sc *SSHClient) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if !sc.IsConnected() {
		return "", fmt.Errorf("%w: not connected", entities.ErrSession)
	}
	if sc.config.IsDebugEnabled() {
		sc.log.Debugf("executing: %s", cmd)
	}
	if err := sc.send(cmd + "\n"); err != nil {
		return "", fmt.Errorf("%w: failed to send command %s: %v", entities.ErrSession, cmd, err)
	}

	output, err := sc.readUntil(ctx, "prompt", sc.prompt.commandDone)
	if err != nil {
		return "", fmt.Errorf("error executing %s: %w", cmd, err)
	}
	output = stripEchoAndPrompt(output)
	if sc.config.IsRawOutputEnabled() {
		sc.log.Debugf("output for '%s':\n%s", cmd, output)
	}
	return output, nil
}

func (sc *SSHClient) send(data string) error {
	_, err := sc.stdin.Write([]byte(data))
	return err
}

// readUntil collects shell output until done accepts it. A timeout or
// cancellation closes the session, since unread output would otherwise
// leak into the next command.
func (sc *SSHClient) readUntil(ctx context.Context, what string, done func(string) bool) (string, error) {
	var output strings.Builder
	timer := time.NewTimer(DefaultTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			sc.Disconnect()
			return output.String(), classifyContext(ctx.Err())
		case <-timer.C:
			sc.Disconnect()
			return output.String(), fmt.Errorf("%w: waiting for %s", entities.ErrTimeout, what)
		case chunk := <-sc.chunks:
			if chunk.err != nil {
				sc.Disconnect()
				return output.String(), fmt.Errorf("%w: read error: %v", entities.ErrSession, chunk.err)
			}
			output.Write(chunk.data)
			if sc.config.IsRawOutputEnabled() {
				sc.log.Debugf("read: %s", string(chunk.data))
			}
			if done(output.String()) {
				return output.String(), nil
			}
		}
	}
}

// pumpOutput forwards stdout reads until an error or until stop closes.
func pumpOutput(r io.Reader, out chan<- sshChunk, stop <-chan struct{}) {
	buf := make([]byte, BufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case out <- sshChunk{data: data}:
			case <-stop:
				return
			}
		}
		if err != nil {
			select {
			case out <- sshChunk{err: err}:
			case <-stop:
			}
			return
		}
	}
}
