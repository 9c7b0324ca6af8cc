// Package console reads answers to interactive questions from a terminal or
// any other line-oriented input. The pairing agent uses it to ask the local
// user for confirmations, PIN codes and passkeys.
//
// Newlines may be LF or CRLF; answers are returned without them and without
// surrounding whitespace.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// Console asks questions on out and reads the answers from in.
type Console struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
	fd  int // terminal file descriptor of in, or -1
}

// New returns a Console on stdin and stdout.
func New() *Console {
	return NewFile(os.Stdin, os.Stdout)
}

// NewFile returns a Console reading from in. When in is a terminal, secret
// answers are read without echo.
func NewFile(in *os.File, out io.Writer) *Console {
	c := NewReader(in, out)
	if fd := int(in.Fd()); terminal.IsTerminal(fd) {
		c.fd = fd
	}
	return c
}

// NewReader returns a Console reading from an arbitrary reader. Secret
// answers are echoed like any other.
func NewReader(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
	}
}

// Ask writes prompt and returns the next line of input.
func (c *Console) Ask(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", errors.Wrap(err, "could not write prompt")
	}
	return c.readLine()
}

// AskSecret is like Ask, but does not echo the answer when reading from a
// terminal.
func (c *Console) AskSecret(prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprint(c.out, prompt); err != nil {
		return "", errors.Wrap(err, "could not write prompt")
	}
	if c.fd < 0 {
		return c.readLine()
	}
	line, err := terminal.ReadPassword(c.fd)
	// The user's newline was swallowed along with the echo.
	fmt.Fprintln(c.out)
	if err != nil {
		return "", errors.Wrap(err, "could not read from terminal")
	}
	return strings.TrimSpace(string(line)), nil
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "could not read answer")
	}
	return strings.TrimSpace(line), nil
}
