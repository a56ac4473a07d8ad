package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"remotemouse/internal/network"
)

func discoverCmd() *cobra.Command {
	var (
		port    int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find relays on the local network",
		Long:  `Probe every address of the local /24 subnet for an open relay port.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			hosts, err := network.ScanLAN(ctx, port)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(hosts) == 0 {
				fmt.Fprintln(out, "No relays found")
				return nil
			}
			for _, h := range hosts {
				fmt.Fprintf(out, "%s:%d\n", h.IP, h.Port)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", network.DefaultPort, "relay port to probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall scan timeout")
	return cmd
}
