package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/0xERR0R/argus/api"
	"github.com/0xERR0R/argus/log"

	"github.com/spf13/cobra"
)

// NewRulesCommand creates new command instance
func NewRulesCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "rules",
		Short: "domain rule operations",
	}

	c.AddCommand(
		&cobra.Command{
			Use:   "list",
			Args:  cobra.NoArgs,
			Short: "prints the blocked domains",
			RunE:  listRules,
		},
		&cobra.Command{
			Use:   "add <domain>",
			Args:  cobra.ExactArgs(1),
			Short: "adds a domain to the rule file",
			RunE:  addRule,
		},
	)

	return c
}

func listRules(_ *cobra.Command, _ []string) error {
	resp, err := http.Get(apiURL(api.PathDomainRules))
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return fmt.Errorf("response NOK, %s %s", resp.Status, string(body))
	}

	var domains []string
	if err := json.NewDecoder(resp.Body).Decode(&domains); err != nil {
		return fmt.Errorf("can't read response: %w", err)
	}

	log.Log().Infof("%d blocked domains:", len(domains))

	for _, d := range domains {
		log.Log().Infof("\t%s", d)
	}

	return nil
}

func addRule(_ *cobra.Command, args []string) error {
	jsonValue, err := json.Marshal(api.AddDomainRequest{Domain: args[0]})
	if err != nil {
		return fmt.Errorf("can't marshal request: %w", err)
	}

	resp, err := http.Post(apiURL(api.PathDomainRules), "application/json", bytes.NewBuffer(jsonValue))
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusOK {
		var status api.StatusResponse
		if err := json.Unmarshal(body, &status); err == nil && status.Message != "" {
			log.Log().Info(status.Message)
		}
	}

	return printOkOrError(httpResponse{resp}, string(body))
}
