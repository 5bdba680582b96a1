package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sim86/internal/cpu"
	"sim86/internal/decoder"
)

var simCmd = &cobra.Command{
	Use:   "sim [file]",
	Short: "Run mov instructions through the register simulator",
	Long: `Decode a binary, or read an assembly listing with --listing, apply its
register moves and print the final register file.`,
	Example: `
# Simulate a binary
sim86 sim listing_0043

# Trace a listing while it is being written
sim86 sim --listing --follow trace.asm
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lg := componentLogger(cfg)
		defer lg.Close()

		listing, _ := cmd.Flags().GetBool("listing")
		follow, _ := cmd.Flags().GetBool("follow")
		poll, _ := cmd.Flags().GetBool("poll")
		trace, _ := cmd.Flags().GetBool("trace")
		out := cmd.OutOrStdout()

		start := time.Now()
		var c cpu.CPU
		onChange := func(line int, ch cpu.Change) {
			lg.Debug("register write", "line", line, "change", ch.String())
			if trace {
				fmt.Fprintf(out, "%d: %s\n", line, ch)
			}
		}

		var runErr error
		switch {
		case follow:
			if !listing || args[0] == "-" {
				return fmt.Errorf("--follow needs --listing and a file path")
			}
			runErr = c.Follow(cmd.Context(), args[0], cpu.FollowOptions{Follow: true, Poll: poll}, onChange)
			if errors.Is(runErr, context.Canceled) {
				runErr = nil
			}
		case listing:
			img, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer img.Close()
			runErr = c.Simulate(strings.NewReader(string(img.All)), onChange)
		default:
			img, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer img.Close()
			decoded, decErr := decoder.Decode(img.All)
			var text strings.Builder
			for _, ins := range decoded {
				text.WriteString(decoder.Format(ins))
				text.WriteByte('\n')
			}
			runErr = c.Simulate(strings.NewReader(text.String()), onChange)
			if runErr == nil && decErr != nil {
				lg.DecodeAborted(decErr)
				runErr = fmt.Errorf("decode %s: %w", img.Path, decErr)
			}
		}

		lg.Debug("simulation finished", "elapsed", time.Since(start))
		if err := c.Dump(out); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	simCmd.Flags().BoolP("listing", "l", false, "Input is an assembly listing, not machine code")
	simCmd.Flags().BoolP("follow", "F", false, "Keep applying lines appended to the listing")
	simCmd.Flags().Bool("poll", false, "Poll for appends instead of using inotify")
	simCmd.Flags().BoolP("trace", "t", false, "Print every register write")
}
