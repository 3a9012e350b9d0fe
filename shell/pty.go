package shell

import (
	"errors"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/corvidterm/corvid/config"
	"github.com/corvidterm/corvid/parser"
)

// pollChunk is the read size for one non-blocking PTY read.
const pollChunk = 256

// PtySession manages a pseudo-terminal connection to a shell.
type PtySession struct {
	cmd      *exec.Cmd
	pty      *os.File
	readBuf  []byte
	mu       sync.Mutex
	exited   bool
	exitedMu sync.Mutex
}

// NewPtySession spawns the configured shell on a new pseudo-terminal.
// The child becomes its own session leader with the slave side as its
// controlling terminal and stdio.
func NewPtySession(cfg *config.Config, cols, rows uint16) (*PtySession, error) {
	shell := findShell(cfg)

	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(shell, "-i")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
	cmd.Env = []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"HOME=" + currentUser.HomeDir,
		"USER=" + currentUser.Username,
		"SHELL=" + shell,
		"LANG=" + os.Getenv("LANG"),
	}
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: cols,
		Rows: rows,
	})
	if err != nil {
		return nil, err
	}

	// Poll drains without blocking the frame loop.
	if err := unix.SetNonblock(int(ptmx.Fd()), true); err != nil {
		ptmx.Close()
		cmd.Process.Kill()
		return nil, err
	}

	session := &PtySession{
		cmd:     cmd,
		pty:     ptmx,
		readBuf: make([]byte, pollChunk),
	}

	go func() {
		cmd.Wait()
		session.exitedMu.Lock()
		session.exited = true
		session.exitedMu.Unlock()
	}()

	return session, nil
}

// findShell picks the shell to spawn: the config override if it
// exists, then the user's /etc/passwd entry, then a fallback list.
func findShell(cfg *config.Config) string {
	if cfg != nil && cfg.Shell != "" {
		if _, err := os.Stat(cfg.Shell); err == nil {
			return cfg.Shell
		}
	}

	if currentUser, err := user.Current(); err == nil {
		if shell := getUserShell(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}

	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

// getUserShell reads the user's shell from /etc/passwd.
func getUserShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Poll drains all pending child output, feeding each chunk to the
// parser. Returns nil once no data remains; any other read failure is
// surfaced to the caller.
func (p *PtySession) Poll(t *parser.Terminal) error {
	for {
		n, err := p.pty.Read(p.readBuf)
		if n > 0 {
			t.Process(p.readBuf[:n])
		}
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				return nil
			}
			return err
		}
		if n < len(p.readBuf) {
			return nil
		}
	}
}

// Send writes data to the child, looping until the whole buffer is
// written.
func (p *PtySession) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(data) > 0 {
		n, err := p.pty.Write(data)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// Resize sets the kernel window size of the PTY.
func (p *PtySession) Resize(cols, rows uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pty.Setsize(p.pty, &pty.Winsize{
		Cols: cols,
		Rows: rows,
	})
}

// HasExited returns true if the shell process has exited.
func (p *PtySession) HasExited() bool {
	p.exitedMu.Lock()
	defer p.exitedMu.Unlock()
	return p.exited
}

// Close terminates the child and closes the PTY.
func (p *PtySession) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	return p.pty.Close()
}
