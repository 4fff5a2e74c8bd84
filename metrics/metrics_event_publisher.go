package metrics

import (
	"fmt"
	"time"

	"github.com/0xERR0R/argus/evt"
	"github.com/0xERR0R/argus/util"

	"github.com/prometheus/client_golang/prometheus"
)

func registerEventListeners() {
	registerApplicationEventListeners()
	registerRuleEventListeners()
	registerExchangeEventListeners()
	registerQueryLogEventListeners()
}

func registerApplicationEventListeners() {
	v := versionNumberGauge()
	RegisterMetric(v)

	subscribe(evt.ApplicationStarted, func(version, buildTime string) {
		v.WithLabelValues(version, buildTime).Set(1)
	})
}

func versionNumberGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "argus_build_info",
			Help: "Version number and build info",
		}, []string{"version", "build_time"},
	)
}

func registerRuleEventListeners() {
	domainCnt := ruleDomainGauge()
	lastReload := lastRuleReload()
	addedCnt := ruleAddedCount()

	RegisterMetric(domainCnt)
	RegisterMetric(lastReload)
	RegisterMetric(addedCnt)

	subscribe(evt.RulesReloaded, func(cnt int) {
		domainCnt.Set(float64(cnt))
		lastReload.Set(float64(time.Now().Unix()))
	})

	subscribe(evt.RuleAdded, func(_ string) {
		addedCnt.Inc()
	})
}

func ruleDomainGauge() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "argus_rules_domains",
		Help: "Number of blocked domains in the active rule set",
	})
}

func lastRuleReload() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "argus_rules_last_reload",
		Help: "Timestamp of the last rule file load",
	})
}

func ruleAddedCount() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_rules_added_total",
		Help: "Number of domains added through the API",
	})
}

func registerExchangeEventListeners() {
	exchangeCnt := exchangeCount()
	blockedByRule := blockedByRuleCount()

	RegisterMetric(exchangeCnt)
	RegisterMetric(blockedByRule)

	subscribe(evt.ExchangeBlocked, func(rule string) {
		exchangeCnt.WithLabelValues("blocked").Inc()
		blockedByRule.WithLabelValues(rule).Inc()
	})

	subscribe(evt.ExchangePassed, func(_ string) {
		exchangeCnt.WithLabelValues("passed").Inc()
	})
}

func exchangeCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_exchanges_total",
			Help: "Number of intercepted requests by result",
		}, []string{"result"},
	)
}

func blockedByRuleCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_blocked_by_rule_total",
			Help: "Number of blocked requests per matching domain rule",
		}, []string{"rule"},
	)
}

func registerQueryLogEventListeners() {
	failedCnt := queryLogWriteFailedCount()
	clearedCnt := queryLogClearedCount()

	RegisterMetric(failedCnt)
	RegisterMetric(clearedCnt)

	subscribe(evt.QueryLogWriteFailed, func(_ error) {
		failedCnt.Inc()
	})

	subscribe(evt.QueryLogCleared, func() {
		clearedCnt.Inc()
	})
}

func queryLogWriteFailedCount() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_querylog_write_failed_total",
		Help: "Number of log entries which couldn't be persisted",
	})
}

func queryLogClearedCount() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "argus_querylog_cleared_total",
		Help: "Number of log clear operations",
	})
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError(fmt.Sprintf("can't subscribe topic '%s'", topic), evt.Bus().Subscribe(topic, fn))
}
