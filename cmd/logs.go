package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/0xERR0R/argus/api"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"

	"github.com/spf13/cobra"
)

// NewLogsCommand creates new command instance
func NewLogsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "logs",
		Short: "log operations",
	}

	c.AddCommand(newLogsListCommand(), newLogsClearCommand())

	return c
}

func newLogsListCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "prints the most recent log entries",
		RunE:  listLogs,
	}

	c.Flags().IntP("limit", "l", api.DefaultLogLimit, "max number of entries")

	return c
}

func newLogsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Args:    cobra.NoArgs,
		Aliases: []string{"flush"},
		Short:   "deletes all log entries",
		RunE:    clearLogs,
	}
}

func listLogs(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	resp, err := http.Get(apiURL(api.PathLogs) + "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode())
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return fmt.Errorf("response NOK, %s %s", resp.Status, string(body))
	}

	var entries []model.LogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("can't read response: %w", err)
	}

	log.Log().Infof("%d log entries:", len(entries))

	for _, e := range entries {
		status := "-"
		if e.StatusCode != nil {
			status = strconv.Itoa(*e.StatusCode)
		}

		line := fmt.Sprintf("%s %-7s %3s %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Method, status, e.URL)
		if e.IsBlocked {
			line += fmt.Sprintf(" (blocked by %s)", e.BlockReason)
		}

		log.Log().Info(line)
	}

	return nil
}

func clearLogs(_ *cobra.Command, _ []string) error {
	req, err := http.NewRequest(http.MethodDelete, apiURL(api.PathLogs), nil)
	if err != nil {
		return fmt.Errorf("can't create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("can't execute %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	return printOkOrError(httpResponse{resp}, string(body))
}
