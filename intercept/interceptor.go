package intercept

import (
	"context"
	"net/http"

	"github.com/0xERR0R/argus/log"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BlockReasonHeader marks responses synthesized for blocked requests
const BlockReasonHeader = "X-Argus-Block-Reason"

// Interceptor is called by the transport for every HTTP exchange
type Interceptor interface {
	// OnRequest observes the request before it is forwarded.
	// A non nil response is final, the request must not be forwarded.
	OnRequest(ctx context.Context, req *http.Request) *http.Response

	// OnResponse observes the final response of the exchange, either
	// synthetic or from upstream.
	OnResponse(ctx context.Context, req *http.Request, resp *http.Response)
}

// NewExchangeContext returns a context with a logger carrying a new exchange id
func NewExchangeContext(ctx context.Context) (context.Context, *logrus.Entry) {
	return log.CtxWithFields(ctx, logrus.Fields{
		"prefix":   "intercept",
		"exchange": uuid.NewString(),
	})
}
