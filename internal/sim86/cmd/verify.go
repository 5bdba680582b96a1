package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sim86/internal/logging"
	"sim86/internal/verify"
)

// ErrMismatch is returned when the reference decoder disagrees.
var ErrMismatch = errors.New("reference decoder disagrees")

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Cross-check the decoder against x86asm",
	Long: `Decode the file and re-decode every instruction with the x86asm
reference decoder in 16-bit mode, reporting length and operation mismatches.`,
	Example: `
# Check a binary
sim86 verify listing_0041
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		lg := componentLogger(cfg)
		defer lg.Close()

		img, err := openInput(cmd, args[0])
		if err != nil {
			return err
		}
		defer img.Close()

		report := verify.Bytes(img.All)
		if report.DecodeErr != nil {
			lg.DecodeAborted(report.DecodeErr)
		}
		return reportVerify(cmd.OutOrStdout(), report, lg)
	},
}

// reportVerify prints one line per mismatch and a summary.
func reportVerify(w io.Writer, r verify.Report, lg *logging.LoggerCloser) error {
	for _, m := range r.Mismatches {
		fmt.Fprintln(w, m.String())
	}
	fmt.Fprintf(w, "; verified %d instructions, %d mismatches\n", r.Checked, len(r.Mismatches))
	lg.Debug("verify finished", "checked", r.Checked, "mismatches", len(r.Mismatches))

	if r.DecodeErr != nil {
		return fmt.Errorf("verify: %w", r.DecodeErr)
	}
	if len(r.Mismatches) > 0 {
		return fmt.Errorf("%w: %d of %d instructions", ErrMismatch, len(r.Mismatches), r.Checked)
	}
	return nil
}
