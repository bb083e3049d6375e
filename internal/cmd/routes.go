package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Manage subnet routes",
}

var routesAdvertiseCmd = &cobra.Command{
	Use:   "advertise <cidr>...",
	Short: "Advertise subnet routes from the local node",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		result, err := a.Client.AdvertiseRoutes(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var routesGetCmd = &cobra.Command{
	Use:   "get <device-id>",
	Short: "Show a device's advertised and enabled routes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		routes, err := a.Client.DeviceRoutes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("advertised: %s\n", joinOrNone(routes.Advertised))
		fmt.Printf("enabled:    %s\n", joinOrNone(routes.Enabled))
		return nil
	},
}

var routesSetCmd = &cobra.Command{
	Use:   "set <device-id> <cidr>...",
	Short: "Set the enabled routes for a device in the control plane",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		result, err := a.Client.SetDeviceRoutes(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	routesCmd.AddCommand(routesAdvertiseCmd)
	routesCmd.AddCommand(routesGetCmd)
	routesCmd.AddCommand(routesSetCmd)
	rootCmd.AddCommand(routesCmd)
}

func joinOrNone(routes []string) string {
	if len(routes) == 0 {
		return "(none)"
	}
	return strings.Join(routes, ", ")
}
