package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remotemouse/internal/autostart"
)

func autostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start the relay on login",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start the relay when you log in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := autostart.Enable(); err != nil {
					return err
				}
				path, _ := autostart.Path()
				fmt.Fprintf(cmd.OutOrStdout(), "Autostart enabled (%s)\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting the relay on login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := autostart.Disable(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether autostart is enabled",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if autostart.IsEnabled() {
					fmt.Fprintln(cmd.OutOrStdout(), "enabled")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "disabled")
				}
			},
		},
	)
	return cmd
}
