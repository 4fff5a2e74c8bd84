package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// RulesReloaded fires after the rule file was (re)loaded. Parameter: domain count
	RulesReloaded = "rules:reloaded"

	// RuleAdded fires after a new domain was appended to the rule file. Parameter: domain
	RuleAdded = "rules:added"

	// ExchangeBlocked fires if a request was short-circuited. Parameter: matching rule
	ExchangeBlocked = "exchange:blocked"

	// ExchangePassed fires if a request was passed to the upstream. Parameter: host
	ExchangePassed = "exchange:passed"

	// QueryLogWriteFailed fires if a log entry couldn't be persisted. Parameter: error
	QueryLogWriteFailed = "querylog:writeFailed"

	// QueryLogCleared fires after all log entries were deleted. No parameter
	QueryLogCleared = "querylog:cleared"

	// ApplicationStarted fires on start of the application. Parameter: version number, build time
	ApplicationStarted = "application:started"
)

// nolint
var evtBus = EventBus.New()

// Bus returns the global bus instance
func Bus() EventBus.Bus {
	return evtBus
}
