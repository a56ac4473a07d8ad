package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"remotemouse/internal/input"
	"remotemouse/internal/network"
	"remotemouse/internal/protocol"
)

func watchCmd() *cobra.Command {
	var apiAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a relay's event feed",
		Long: `Print the connections and input events of a relay as they happen.
The relay must run with its status API enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fc := network.NewFeedClient(apiAddr)
			fc.OnSession = func(ev protocol.SessionPayload) { printSession(out, ev) }
			fc.OnInput = func(ev input.Event) { printInput(out, ev) }
			fc.Start()
			defer fc.Close()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&apiAddr, "api-addr", "127.0.0.1:19780", "relay status API address")
	return cmd
}

func printSession(w io.Writer, ev protocol.SessionPayload) {
	switch {
	case ev.Connected:
		fmt.Fprintf(w, "connected     %s\n", ev.Remote)
	case ev.Error != "":
		fmt.Fprintf(w, "disconnected  %s (%s)\n", ev.Remote, ev.Error)
	default:
		fmt.Fprintf(w, "disconnected  %s\n", ev.Remote)
	}
}

func printInput(w io.Writer, ev input.Event) {
	switch ev.Type {
	case input.EventMouseMove:
		fmt.Fprintf(w, "move          %+d %+d\n", ev.DeltaX, ev.DeltaY)
	case input.EventMouseButton:
		state := "up"
		if ev.Pressed {
			state = "down"
		}
		fmt.Fprintf(w, "button        %s %s\n", ev.Button, state)
	default:
		fmt.Fprintf(w, "%-13s %+v\n", ev.Type, ev)
	}
}
