package cmd

import (
	"fmt"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(c *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(c.OutOrStdout(), buildVersion(version).String())
		},
	})
}

func buildVersion(version string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("modelgen", "Phalcon model generator", ""),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
		},
	)
}
