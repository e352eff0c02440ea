package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/webscan/internal/checks"
	"github.com/khanhnv2901/webscan/internal/plugin"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the registered vulnerability checks",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(colorInfo("Built-in checks:"))
		for _, reg := range checks.Builtin() {
			fmt.Printf("  %s\n", reg.Name)
		}

		plugins := plugin.Registrations()
		if len(plugins) == 0 {
			return
		}
		fmt.Println(colorInfo("Plugin checks:"))
		for _, reg := range plugins {
			fmt.Printf("  %s\n", reg.Name)
		}
	},
}
