package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/0xERR0R/argus/server"

	"github.com/spf13/cobra"
)

// NewHealthcheckCommand creates new command instance
func NewHealthcheckCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "healthcheck",
		Args:  cobra.NoArgs,
		Short: "performs healthcheck",
		RunE:  healthcheck,
	}

	c.Flags().Duration("timeout", 2*time.Second, "healthcheck timeout")

	return c
}

func healthcheck(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client := http.Client{Timeout: timeout}

	resp, err := client.Get(apiURL(server.PathHealthz))
	if err == nil {
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("response NOK, %s", resp.Status)
		}
	}

	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "NOT OK")
	}

	return err
}
