package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"sim86/internal/binimg"
	"sim86/internal/config"
	"sim86/internal/decoder"
	"sim86/internal/disasm"
	"sim86/internal/logging"
	"sim86/internal/sim86/log"
	"sim86/internal/ui/colorize"
	"sim86/internal/verify"
)

func init() {
	rootCmd.PersistentFlags().StringP("data-dir", "D", "", "Directory holding sim86.json")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <data-dir>/sim86.json)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable syntax highlighting")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().StringP("output", "o", "", "Write the listing to a file instead of stdout")
	rootCmd.Flags().Uint32("origin", 0, "Load address added to listing offsets")
	rootCmd.Flags().Bool("header", false, "Emit a bits 16 directive before the listing")
	rootCmd.Flags().Bool("offsets", false, "Annotate lines with address and branch target")
	rootCmd.Flags().Bool("bytes", false, "Annotate lines with their raw encoding")
	rootCmd.Flags().Bool("verify", false, "Cross-check instructions against the reference decoder")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the listing without the TUI")
	rootCmd.Flags().Bool("tui", false, "Open the interactive viewer")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")

	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(verifyCmd)
}

var rootCmd = &cobra.Command{
	Use:   "sim86 [file]",
	Short: "8086 machine code disassembler",
	Long: `sim86 decodes a flat 8086 binary into reassemblable nasm-style text.
Decoding stops at the first unsupported or truncated instruction; everything
decoded before it is still printed.`,
	Example: `
# Print the listing of a binary
sim86 listing_0039 --no-tui

# Decode from stdin with addresses and raw bytes
cat listing_0041 | sim86 - --offsets --bytes

# Browse the listing interactively
sim86 listing_0041 --tui
  `,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return log.Setup(log.Options{Debug: cfg.Debug, File: cfg.LogFile})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

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

		output, _ := cmd.Flags().GetString("output")
		if useTUI(cmd, output) {
			program := tea.NewProgram(
				NewModel(img, cfg),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := program.Run(); err != nil {
				slog.Error("TUI run error", "error", err)
				return fmt.Errorf("TUI error: %v", err)
			}
			return nil
		}

		return runNoTUI(cmd, img, cfg, output, lg)
	},
}

// loadConfig reads the config file and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	optional := path == ""
	if optional {
		dataDir, _ := flags.GetString("data-dir")
		p, err := config.DefaultPath(dataDir)
		if err != nil {
			// no user config dir; run on flags alone
			p = ""
		}
		path = p
	}

	var cfg config.Config
	if path != "" {
		c, err := config.Load(path, optional)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}

	overrideBool := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	overrideBool("debug", &cfg.Debug)
	overrideBool("no-color", &cfg.NoColor)
	overrideBool("header", &cfg.Header)
	overrideBool("offsets", &cfg.Offsets)
	overrideBool("bytes", &cfg.Bytes)
	overrideBool("verify", &cfg.Verify)
	if flags.Changed("origin") {
		cfg.Origin, _ = flags.GetUint32("origin")
		if cfg.Origin > 0xFFFF {
			return cfg, fmt.Errorf("origin 0x%x exceeds 16 bits", cfg.Origin)
		}
	}
	return cfg, nil
}

func componentLogger(cfg config.Config) *logging.LoggerCloser {
	return logging.New(logging.Options{Debug: cfg.Debug})
}

// openInput maps the named file, or reads stdin when name is "-".
func openInput(cmd *cobra.Command, name string) (*binimg.Image, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return binimg.FromBytes("<stdin>", data), nil
	}
	img, err := binimg.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", name)
		}
		return nil, err
	}
	return img, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func useTUI(cmd *cobra.Command, output string) bool {
	if on, _ := cmd.Flags().GetBool("tui"); on {
		return true
	}
	if off, _ := cmd.Flags().GetBool("no-tui"); off || output != "" {
		return false
	}
	return isTerminal(cmd.OutOrStdout())
}

// runNoTUI writes the listing. Lines decoded before a failure are written
// before the error is returned.
func runNoTUI(cmd *cobra.Command, img *binimg.Image, cfg config.Config, output string, lg *logging.LoggerCloser) error {
	lg.Debug("decoding", "input", img.Path, "size", img.Len(), "origin", fmt.Sprintf("%04x", cfg.Origin))
	decoded, decErr := decoder.Decode(img.All)
	stream := disasm.Build(cfg.Origin, decoded)
	for _, ins := range stream {
		lg.Instruction(ins.Addr, ins.Raw, ins.Text)
	}

	w := cmd.OutOrStdout()
	color := false
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		color = isTerminal(w) && colorize.Enabled(cfg.NoColor)
	}

	opts := disasm.LineOptions{Offsets: cfg.Offsets, Bytes: cfg.Bytes}
	if color {
		var buf bytes.Buffer
		if err := stream.Write(&buf, cfg.Header, opts); err != nil {
			return err
		}
		text, _ := colorize.Listing(buf.String(), cfg.NoColor)
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	} else if err := stream.Write(w, cfg.Header, opts); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}

	if decErr != nil {
		lg.DecodeAborted(decErr)
		return fmt.Errorf("decode %s: %w", img.Path, decErr)
	}

	if cfg.Verify {
		return reportVerify(cmd.ErrOrStderr(), verify.Bytes(img.All), lg)
	}
	return nil
}

func Execute() {
	// Bypass fang's styled output when printing a plain listing or piping.
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" {
			noTUI = true
			break
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if err := executeRoot(context.Background(), !noTUI); err != nil {
		os.Exit(1)
	}
}

// executeRoot runs the root command and closes the log file opened for it.
func executeRoot(ctx context.Context, styled bool) error {
	var err error
	if styled {
		err = fang.Execute(ctx, rootCmd, fang.WithNotifySignal(os.Interrupt))
	} else {
		err = rootCmd.ExecuteContext(ctx)
		if err != nil {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
	}
	if closeErr := log.Close(); closeErr != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: close log:", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	return err
}
