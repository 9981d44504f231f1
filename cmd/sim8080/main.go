package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	simulator "github.com/Galarius/intel-8080-simulator"
	"github.com/Galarius/intel-8080-simulator/internal/panel"
	"github.com/Galarius/intel-8080-simulator/internal/simlog"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sim8080",
		Short: "Intel 8080 cycle-accurate functional simulator",
	}

	var logLevel string
	var debug bool
	var cycleBudget int

	runCmd := &cobra.Command{
		Use:   "run <program-file>",
		Short: "Load a raw binary image and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("sim8080: %w", err)
			}

			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			logger := simlog.New(os.Stderr, level)

			proc := simulator.New(simulator.WithLogger(logger))

			if debug {
				return panel.Run(proc, program)
			}

			if err := proc.Load(program); err != nil {
				return fmt.Errorf("sim8080: %w", err)
			}

			ctx := context.Background()
			var runErr error
			if cycleBudget > 0 {
				// A cycle budget of N translates to a wall-clock deadline at
				// the machine's 2 MHz rate; this is an approximation since
				// Start is not itself cycle-stepped against a deadline.
				runErr = proc.StartFor(ctx, time.Duration(cycleBudget)*500*time.Nanosecond)
			} else {
				runErr = proc.StartFor(ctx, 10*time.Second)
			}
			if runErr != nil {
				return fmt.Errorf("sim8080: %w", runErr)
			}

			snap := proc.Snapshot()
			fmt.Printf("halted=%v pc=%04x sp=%04x cycles=%d\n", snap.Halted, snap.PC, snap.SP, proc.Cycles())
			fmt.Printf("A=%02x B=%02x C=%02x D=%02x E=%02x H=%02x L=%02x\n",
				snap.A, snap.B, snap.C, snap.D, snap.E, snap.H, snap.L)
			fmt.Printf("flags: Z=%v C=%v S=%v P=%v AC=%v\n",
				snap.Flags.Zero, snap.Flags.Carry, snap.Flags.Sign, snap.Flags.Parity, snap.Flags.AuxCarry)

			if !snap.Halted {
				return fmt.Errorf("sim8080: did not halt within budget")
			}
			return nil
		},
	}
	runCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	runCmd.Flags().BoolVar(&debug, "debug", false, "launch the interactive TUI debugger instead of running to completion")
	runCmd.Flags().IntVar(&cycleBudget, "cycles", 0, "abort if the program has not halted within the wall-clock time of this many clock cycles at 2 MHz (0: use a fixed 10s wall-clock budget)")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("sim8080: unrecognized log level %q", s)
	}
}
