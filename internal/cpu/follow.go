package cpu

import (
	"context"
	"fmt"

	"github.com/nxadm/tail"
)

// FollowOptions configures Follow.
type FollowOptions struct {
	// Follow keeps reading lines appended after the current end of file.
	// Without it Follow returns once the existing lines are consumed.
	Follow bool
	// Poll uses polling instead of inotify to detect appends.
	Poll bool
}

// Follow applies the lines of the listing at path as they become
// available, until the file is exhausted (without Follow) or ctx ends.
func (c *CPU) Follow(ctx context.Context, path string, opts FollowOptions, onChange func(line int, ch Change)) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    opts.Follow,
		ReOpen:    opts.Follow,
		Poll:      opts.Poll,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Wait()
			}
			if line.Err != nil {
				return fmt.Errorf("line %d: %w", line.Num, line.Err)
			}
			ch, applied, err := c.Apply(line.Text)
			if err != nil {
				return fmt.Errorf("line %d: %w", line.Num, err)
			}
			if applied && onChange != nil {
				onChange(line.Num, ch)
			}
		}
	}
}
