package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the devices in the tailnet",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	devices, err := a.Client.ListDevices(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESSES\tOS\tONLINE")
	for _, device := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			device.ID,
			device.Name,
			strings.Join(device.Addresses, ","),
			device.OS,
			device.Online)
	}
	return w.Flush()
}
