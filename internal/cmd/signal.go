package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/handoff/internal/errors"
	coordsignal "github.com/Iron-Ham/handoff/internal/signal"
)

func (a *app) signalCmd() *cobra.Command {
	signalCmd := &cobra.Command{
		Use:   "signal",
		Short: "Send and receive one-shot signals between sessions",
	}

	sendCmd := &cobra.Command{
		Use:   "send <type> [json]",
		Short: "Raise a signal, replacing any unread one of the same type",
		Long: `Raise a signal for the session that listens on <type>.

  handoff signal send testing '{"type": "new_test_plan", "plan_file": "..."}'

Data may be any JSON value and defaults to an empty object.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data any
			if len(args) == 2 {
				v, err := parseValue(args[1])
				if err != nil {
					return err
				}
				data = v
			}
			if err := a.broker(cmd).SendSignal(args[0], data); err != nil {
				return fmt.Errorf("failed to send signal: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signal sent: %s\n", args[0])
			return nil
		},
	}

	receiveCmd := &cobra.Command{
		Use:   "receive <type>",
		Short: "Consume the outstanding signal and print it as JSON",
		Long:  `Consume the outstanding signal of <type>. Exits non-zero when there is none.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, ok := a.broker(cmd).ReceiveSignal(args[0])
			if !ok {
				return fmt.Errorf("no %s signal: %w", args[0], errors.ErrSignalAbsent)
			}
			return writeJSON(cmd.OutOrStdout(), sig)
		},
	}

	var (
		timeout time.Duration
		poll    time.Duration
		follow  bool
	)
	watchCmd := &cobra.Command{
		Use:   "watch <type>",
		Short: "Block until a signal arrives and print it",
		Long: `Block until a signal of <type> arrives, consume it and print it as JSON.

With --follow, keep watching and print each signal as one JSON line until
interrupted. --timeout bounds the wait; zero waits forever.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			b := a.broker(cmd)
			opts := []coordsignal.WatchOption{coordsignal.WithPollInterval(poll)}
			out := cmd.OutOrStdout()

			if follow {
				var writeErr error
				err := b.WatchSignals(ctx, args[0], func(sig *coordsignal.Signal) {
					if err := writeJSONLine(out, sig); err != nil && writeErr == nil {
						writeErr = err
					}
				}, opts...)
				if err != nil {
					return err
				}
				return writeErr
			}

			sig, err := b.WaitSignal(ctx, args[0], opts...)
			if err != nil {
				if errors.Is(err, errors.ErrSignalAbsent) {
					return fmt.Errorf("no %s signal before timeout: %w", args[0], err)
				}
				return err
			}
			return writeJSON(out, sig)
		},
	}
	watchCmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")
	watchCmd.Flags().DurationVar(&poll, "poll-interval", coordsignal.DefaultPollInterval, "fallback polling interval")
	watchCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep watching and print every signal")

	peekCmd := &cobra.Command{
		Use:   "peek <type>",
		Short: "Print the outstanding signal without consuming it",
		Long:  `Print the outstanding signal of <type> as JSON, leaving it in place. Exits non-zero when there is none.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, ok := a.broker(cmd).Signals().Peek(args[0])
			if !ok {
				return fmt.Errorf("no %s signal: %w", args[0], errors.ErrSignalAbsent)
			}
			return writeJSON(cmd.OutOrStdout(), sig)
		},
	}

	signalCmd.AddCommand(sendCmd, receiveCmd, peekCmd, watchCmd)
	return signalCmd
}
