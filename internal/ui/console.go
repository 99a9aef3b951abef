package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"dailyattendance/internal/attendance"
	"dailyattendance/internal/client"
)

// Actions are the operations the console drives.
type Actions interface {
	Refresh(ctx context.Context) (client.Outcome, bool)
	Submit(ctx context.Context, draft attendance.Draft) client.Outcome
	Logout()
}

// Console is the terminal presenter: login prompt, status form, records table
// and notifications.
type Console struct {
	actions  Actions
	authed   func() bool
	capture  func(ctx context.Context, rawURL string) bool
	loginURL string

	mu    sync.Mutex
	out   io.Writer
	draft attendance.Draft
	state SubmitState
	wg    sync.WaitGroup
}

// NewConsole builds a console. capture installs a token from a redirected URL
// pasted by the user; loginURL is the provider authorization link.
func NewConsole(out io.Writer, actions Actions, authed func() bool, capture func(context.Context, string) bool, loginURL string) *Console {
	return &Console{
		actions:  actions,
		authed:   authed,
		capture:  capture,
		loginURL: loginURL,
		out:      out,
		draft:    attendance.NewDraft(),
	}
}

// Run reads commands until EOF, quit, or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.Greet()
	done := make(chan struct{})
	defer close(done)
	lines, errc := readLines(in, done)

	for {
		c.prompt()
		select {
		case <-ctx.Done():
			c.Wait()
			return nil
		case line, ok := <-lines:
			if !ok {
				c.Wait()
				return <-errc
			}
			if quit := c.Execute(ctx, line); quit {
				c.Wait()
				return nil
			}
		}
	}
}

// readLines scans in on its own goroutine until EOF or until done is closed.
// errc receives the scan error on EOF and is closed when the goroutine exits.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// Wait blocks until any outstanding submission finishes.
func (c *Console) Wait() {
	c.wg.Wait()
}

// Greet prints the login link or the form, depending on the session.
func (c *Console) Greet() {
	c.printf("Daily Attendance\n")
	c.SessionChanged(c.authed())
}

// SessionChanged is the session listener.
func (c *Console) SessionChanged(authenticated bool) {
	if authenticated {
		c.printf("Logged in. Current status: %s. Type 'help' for commands.\n", c.currentDraft().Status)
		return
	}
	c.printf("Not logged in. Open this link to log in:\n  %s\n", c.loginURL)
	c.printf("If the browser cannot reach this machine, paste the redirected address with: callback <url>\n")
}

// ShowRecords renders records in the order received.
func (c *Console) ShowRecords(records []attendance.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, "My Records")
	if len(records) == 0 {
		fmt.Fprintln(c.out, "  No attendance records yet.")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  DATE\tSTATUS\tRECORDED")
	for _, r := range records {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Date, r.Status, r.CreatedAt.String())
	}
	tw.Flush()
}

// Execute runs one command line. It reports whether the user asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		c.help()
	case "login":
		if c.authed() {
			c.printf("Already logged in.\n")
			return false
		}
		c.SessionChanged(false)
	case "callback":
		if len(args) != 1 {
			c.printf("usage: callback <redirected url>\n")
			return false
		}
		if !c.capture(ctx, args[0]) {
			c.printf("No access token found in that address.\n")
		}
	case "logout":
		c.actions.Logout()
	case "status":
		c.setStatus(args)
	case "dismiss":
		c.state.Dismiss()
	case "records", "submit":
		if !c.authed() {
			c.printf("Please log in first.\n")
			return false
		}
		if cmd == "records" {
			c.refresh(ctx)
		} else {
			c.submit(ctx)
		}
	default:
		c.printf("Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

func (c *Console) setStatus(args []string) {
	if len(args) != 1 {
		c.printf("usage: status Present|Absent|Late\n")
		return
	}
	s, ok := attendance.ParseStatus(args[0])
	c.mu.Lock()
	c.draft.Status = s
	c.mu.Unlock()
	if !ok {
		c.printf("Status set to %q. It will be rejected on submit: choose Present, Absent or Late.\n", s)
		return
	}
	c.printf("Status set to %s.\n", s)
}

func (c *Console) refresh(ctx context.Context) {
	out, ok := c.actions.Refresh(ctx)
	if ok && !out.OK() {
		c.notify(Failed, Message(out))
	}
}

// submit runs in the background; the state machine rejects overlapping submits.
func (c *Console) submit(ctx context.Context) {
	if !c.state.Begin() {
		c.printf("A submission is already in progress.\n")
		return
	}
	draft := c.currentDraft()
	c.printf("Submitting %s...\n", draft.Status)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		out := c.actions.Submit(ctx, draft)
		if out.OK() {
			c.state.Succeed(Message(out))
			c.notify(Succeeded, Message(out))
			return
		}
		c.state.Fail(Message(out))
		c.notify(Failed, Message(out))
	}()
}

// State exposes the submit state machine.
func (c *Console) State() *SubmitState {
	return &c.state
}

func (c *Console) currentDraft() attendance.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Console) notify(p Phase, msg string) {
	prefix := "✔"
	if p == Failed {
		prefix = "✖"
	}
	c.printf("%s %s (type 'dismiss' to clear)\n", prefix, msg)
}

func (c *Console) help() {
	c.printf(`Commands:
  status <Present|Absent|Late>  choose today's status (default Present)
  submit                        submit today's attendance
  records                       reload my records
  login                         show the login link
  callback <url>                log in with a redirected address
  logout                        end the session
  dismiss                       clear the last notification
  quit                          exit
`)
}

func (c *Console) prompt() {
	c.printf("> ")
}

func (c *Console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
