package intercept

import (
	"context"
	"net/http"

	"github.com/0xERR0R/argus/evt"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"
	"github.com/0xERR0R/argus/util"
)

// Decider decides whether a host is blocked
type Decider interface {
	Decide(host string) model.BlockDecision
}

// LogWriter persists one entry per exchange
type LogWriter interface {
	Append(ctx context.Context, entry *model.LogEntry) error
}

var _ Interceptor = (*Controller)(nil)

// Controller blocks requests to listed domains and records every exchange
type Controller struct {
	decider Decider
	page    *BlockPage
	writer  LogWriter
}

// NewController creates a controller
func NewController(decider Decider, page *BlockPage, writer LogWriter) *Controller {
	return &Controller{
		decider: decider,
		page:    page,
		writer:  writer,
	}
}

// OnRequest implements `Interceptor`.
func (c *Controller) OnRequest(ctx context.Context, req *http.Request) *http.Response {
	host := util.RequestHost(req)

	decision := c.decider.Decide(host)
	if !decision.Blocked {
		evt.Bus().Publish(evt.ExchangePassed, host)

		return nil
	}

	url := util.RequestURL(req)

	log.FromCtx(ctx).WithField("reason", decision.Reason).Infof("BLOCKED: %s", log.EscapeInput(url))

	evt.Bus().Publish(evt.ExchangeBlocked, decision.Rule)

	return c.page.Response(ctx, req, decision.Reason, url)
}

// OnResponse implements `Interceptor`.
func (c *Controller) OnResponse(ctx context.Context, req *http.Request, resp *http.Response) {
	if resp == nil {
		return
	}

	reason := resp.Header.Get(BlockReasonHeader)
	statusCode := resp.StatusCode

	entry := &model.LogEntry{
		Method:      req.Method,
		URL:         util.RequestURL(req),
		Host:        util.RequestHost(req),
		StatusCode:  &statusCode,
		ContentType: resp.Header.Get("Content-Type"),
		IsBlocked:   reason != "",
		BlockReason: reason,
	}

	util.LogOnErrorWithEntry(log.FromCtx(ctx), "can't write log entry: ", c.writer.Append(ctx, entry))
}
