// File: cmd/list.go
package cmd

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/network"
	"github.com/xkilldash9x/stagehand/internal/observability"
	"github.com/xkilldash9x/stagehand/internal/suites"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the suites and their steps without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			// Building suites starts no browser and sends no request.
			all, err := suites.All(suites.Deps{
				Config:   cfg,
				Browsers: browser.NewManager(cfg, logger),
				HTTP:     network.NewClient(network.NewClientConfig(cfg)),
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range all {
				mode := "independent"
				if s.Serial {
					mode = "serial"
				}
				_, _ = w.Write([]byte(s.Name + "\t" + strings.Join(s.Tags, ",") + "\t" + mode + "\n"))
				for _, st := range s.Steps {
					_, _ = w.Write([]byte("  " + st.Name + "\t\t\n"))
				}
			}
			return w.Flush()
		},
	}
}
