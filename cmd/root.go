package cmd

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/log"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals
var (
	configPath string
	apiHost    string
	apiPort    uint16
	cfg        *config.Config
)

const (
	defaultPort       = 5000
	defaultHost       = "localhost"
	defaultConfigPath = "./config.yml"
	configFileEnvVar  = "ARGUS_CONFIG_FILE"
)

// NewRootCommand creates new root command
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "argus",
		Short: "argus is an intercepting HTTP(S) proxy",
		Long: `An intercepting HTTP(S) proxy which blocks
requests to listed domains and records every exchange.`,
		PersistentPreRunE: initConfigPreRun,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newServeCommand().RunE(cmd, args)
		},
	}

	c.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	c.PersistentFlags().StringVar(&apiHost, "apiHost", "", "host of argus (API), taken from config if empty")
	c.PersistentFlags().Uint16Var(&apiPort, "apiPort", 0, "port of argus (API), taken from config if 0")

	c.AddCommand(
		newServeCommand(),
		NewLogsCommand(),
		NewRulesCommand(),
		NewHealthcheckCommand(),
		NewValidateCommand(),
		NewVersionCommand(),
	)

	return c
}

func apiURL(path string) string {
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(apiHost, strconv.Itoa(int(apiPort))), path)
}

func initConfigPreRun(_ *cobra.Command, _ []string) error {
	return initConfig()
}

// resolveConfigPath applies the env var if no path was passed. Only an explicitly
// chosen file is mandatory.
func resolveConfigPath() (mandatory bool) {
	if configPath != defaultConfigPath {
		return true
	}

	if val, present := os.LookupEnv(configFileEnvVar); present {
		configPath = val

		return true
	}

	return false
}

func initConfig() error {
	mandatory := resolveConfigPath()

	loaded, err := config.LoadConfig(configPath, mandatory)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	cfg = loaded

	log.ConfigureLogger(cfg.Log)

	return applyAPIAddress(cfg.Ports.HTTP)
}

// applyAPIAddress fills the API host and port which were not passed as flags
func applyAPIAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("can't parse http address '%s': %w", address, err)
	}

	if apiHost == "" {
		apiHost = host

		if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
			apiHost = defaultHost
		}
	}

	if apiPort == 0 {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return fmt.Errorf("can't convert port '%s' to number: %w", port, err)
		}

		apiPort = uint16(p)
	}

	return nil
}

type codeWithStatus interface {
	StatusCode() int
	Status() string
}

type httpResponse struct {
	resp *http.Response
}

func (r httpResponse) StatusCode() int {
	return r.resp.StatusCode
}

func (r httpResponse) Status() string {
	return r.resp.Status
}

func printOkOrError(resp codeWithStatus, body string) error {
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("response NOK, %s %s", resp.Status(), body)
	}

	log.Log().Info("OK")

	return nil
}

// Execute starts the command processing
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
