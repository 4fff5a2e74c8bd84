package api

import (
	"context"
	"fmt"

	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"
	"github.com/0xERR0R/argus/rules"
)

// RuleRepository reads and extends the rule file
type RuleRepository interface {
	ReadDomains() ([]string, error)
	Append(domain string) (rules.AppendResult, error)
}

// LogRepository reads and clears the log store
type LogRepository interface {
	Recent(ctx context.Context, limit int) []model.LogEntry
	ClearAll(ctx context.Context) error
}

// Facade is the query/mutation surface for the dashboard
type Facade struct {
	rules RuleRepository
	logs  LogRepository
}

// NewFacade creates a facade over the rule and log stores
func NewFacade(rules RuleRepository, logs LogRepository) *Facade {
	return &Facade{
		rules: rules,
		logs:  logs,
	}
}

// RecentLogs returns up to limit entries, newest first. Never fails.
func (f *Facade) RecentLogs(ctx context.Context, limit int) []model.LogEntry {
	return f.logs.Recent(ctx, limit)
}

// ClearLogs deletes all log entries
func (f *Facade) ClearLogs(ctx context.Context) error {
	return f.logs.ClearAll(ctx)
}

// DomainRules returns the domains from the rule file
func (f *Facade) DomainRules() ([]string, error) {
	return f.rules.ReadDomains()
}

// AddDomainRule appends a domain to the rule file. The returned domain is the normalized one.
func (f *Facade) AddDomainRule(ctx context.Context, domain string) (string, rules.AppendResult, error) {
	normalized := rules.NormalizeDomain(domain)

	res, err := f.rules.Append(normalized)
	if err != nil {
		return normalized, res, fmt.Errorf("can't add domain rule: %w", err)
	}

	log.FromCtx(ctx).WithField("domain", log.EscapeInput(normalized)).Infof("domain rule %s", res)

	return normalized, res, nil
}
