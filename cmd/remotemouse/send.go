package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"remotemouse/internal/network"
)

func sendCmd() *cobra.Command {
	var (
		addr  string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [line...]",
		Short: "Send commands to a relay",
		Long: `Send framed commands to a relay. Each line is "<tag> <payload>", for
example "mos m 12 -7" or "mos R l d". Lines are read from stdin when none
are given; empty lines and lines starting with # are skipped.`,
		Example: `  remotemouse send --addr 192.168.1.20:1978 "mos m 40 0" "mos c"
  printf 'mos w 1\nmos w 1\n' | remotemouse send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			client, err := network.Dial(ctx, addr)
			cancel()
			if err != nil {
				return err
			}
			defer client.Close()

			var src io.Reader = cmd.InOrStdin()
			if len(args) > 0 {
				src = strings.NewReader(strings.Join(args, "\n"))
			}
			n, err := sendLines(client, src, delay)
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d frame(s) to %s\n", n, addr)
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", fmt.Sprintf("127.0.0.1:%d", network.DefaultPort), "relay address")
	cmd.Flags().DurationVar(&delay, "delay", 0, "pause between frames")
	return cmd
}

// lineSender is the part of network.Client sendLines needs
type lineSender interface {
	SendLine(line string) error
}

// sendLines sends every command line of src and returns how many were sent
func sendLines(c lineSender, src io.Reader, delay time.Duration) (int, error) {
	sent := 0
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if sent > 0 && delay > 0 {
			time.Sleep(delay)
		}
		if err := c.SendLine(line); err != nil {
			return sent, fmt.Errorf("line %q: %w", line, err)
		}
		sent++
	}
	return sent, scanner.Err()
}
