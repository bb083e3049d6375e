package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping <target>",
	Short: "Probe connectivity to a device by hostname or IP",
	Args:  cobra.ExactArgs(1),
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	result, err := a.Client.Ping(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(result.Message)
	return nil
}
