// Package lockwait waits for the system package manager to release its lock files.
package lockwait

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/conn-castle/webui-installer/internal/messages"
	"github.com/conn-castle/webui-installer/internal/retry"
	"github.com/conn-castle/webui-installer/internal/shell"
)

// ErrLockTimeout is returned when a lock is still held after the poll budget.
var ErrLockTimeout = errors.New("package manager lock still held")

// ErrLockUnverifiable is returned when a lock file can be inspected by no holder.
var ErrLockUnverifiable = errors.New("cannot verify package manager lock")

var fcntlFlockFn = unix.FcntlFlock

// Holder reports the pid holding a write lock on path, or 0 when the lock is free.
type Holder func(ctx context.Context, path string) (int, error)

// Waiter polls a fixed set of lock files until none is held.
type Waiter struct {
	Files    []string
	Interval time.Duration
	MaxPolls int
	Out      io.Writer
	// Sleep waits between polls; nil uses retry.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
	// Holder inspects one lock file; nil uses LockHolder.
	Holder Holder
	// Escalate inspects lock files Holder is not permitted to open.
	Escalate Holder
}

// Wait returns once every lock file is free. It polls at most MaxPolls times
// and returns an error wrapping ErrLockTimeout if a lock is still held after that.
// A lock that cannot be inspected fails immediately with ErrLockUnverifiable.
func (w Waiter) Wait(ctx context.Context) error {
	if len(w.Files) == 0 {
		return errors.New(messages.LockNoFiles)
	}
	polls := w.MaxPolls
	if polls < 1 {
		polls = 1
	}
	holder := w.Holder
	if holder == nil {
		holder = LockHolder
	}
	warned := make(map[string]bool)
	var held []string
	for poll := 1; poll <= polls; poll++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		held = held[:0]
		for _, path := range w.Files {
			pid, err := holder(ctx, path)
			if err != nil && errors.Is(err, os.ErrPermission) && w.Escalate != nil {
				if !warned[path] {
					w.printf(messages.LockEscalatingFmt, path)
					warned[path] = true
				}
				pid, err = w.Escalate(ctx, path)
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf(messages.LockUnverifiableFmt, ErrLockUnverifiable, path, err)
			}
			if pid != 0 {
				held = append(held, path)
				if poll == 1 || poll%10 == 0 {
					w.printf(messages.LockWaitingFmt, path, pid)
				}
			}
		}
		if len(held) == 0 {
			w.printf("%s\n", messages.LockFree)
			return nil
		}
		if poll == polls {
			break
		}
		if err := w.sleep(ctx); err != nil {
			return err
		}
	}
	return fmt.Errorf(messages.LockTimeoutFmt, ErrLockTimeout, polls, strings.Join(held, ", "))
}

func (w Waiter) sleep(ctx context.Context) error {
	if w.Sleep != nil {
		return w.Sleep(ctx, w.Interval)
	}
	return retry.Sleep(ctx, w.Interval)
}

func (w Waiter) printf(format string, args ...any) {
	if w.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(w.Out, format, args...)
}

// LockHolder asks the kernel whether another process holds a write lock on path.
// A missing file is not held. Lock files readable only by root fail with a
// permission error.
func LockHolder(_ context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer func() { _ = file.Close() }()

	lk := unix.Flock_t{Type: unix.F_WRLCK, Whence: 0, Start: 0, Len: 0}
	if err := fcntlFlockFn(file.Fd(), unix.F_GETLK, &lk); err != nil {
		return 0, err
	}
	if lk.Type == unix.F_UNLCK {
		return 0, nil
	}
	return int(lk.Pid), nil
}

// LslocksHolder inspects locks with lslocks(8) through runner, prefixed with
// sudo when useSudo is set. It sees locks on files the caller cannot open.
func LslocksHolder(runner shell.Runner, useSudo bool) Holder {
	return func(ctx context.Context, path string) (int, error) {
		args := []string{"--noheadings", "--raw", "--output", "PID,PATH"}
		cmd := shell.Command{Name: "lslocks", Args: args}
		if useSudo {
			cmd = shell.Command{Name: "sudo", Args: append([]string{"lslocks"}, args...)}
		}
		out, err := runner.Output(ctx, cmd)
		if err != nil {
			return 0, err
		}
		return parseLslocks(out, path), nil
	}
}

// parseLslocks returns the first pid listed for path, or 0.
func parseLslocks(out string, path string) int {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != path {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil || pid <= 0 {
			continue
		}
		return pid
	}
	return 0
}
