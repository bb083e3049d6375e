package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage individual devices",
}

var deviceAuthorizeCmd = &cobra.Command{
	Use:   "authorize <device-id>",
	Short: "Authorize a device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeviceAuthorization(cmd, args[0], true)
	},
}

var deviceDeauthorizeCmd = &cobra.Command{
	Use:   "deauthorize <device-id>",
	Short: "Revoke a device's authorization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setDeviceAuthorization(cmd, args[0], false)
	},
}

var deviceDeleteCmd = &cobra.Command{
	Use:   "delete <device-id>",
	Short: "Remove a device from the tailnet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		result, err := a.Client.DeleteDevice(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	deviceCmd.AddCommand(deviceAuthorizeCmd)
	deviceCmd.AddCommand(deviceDeauthorizeCmd)
	deviceCmd.AddCommand(deviceDeleteCmd)
	rootCmd.AddCommand(deviceCmd)
}

func setDeviceAuthorization(cmd *cobra.Command, deviceID string, authorized bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	result, err := a.Client.AuthorizeDevice(cmd.Context(), deviceID, authorized)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	return nil
}
