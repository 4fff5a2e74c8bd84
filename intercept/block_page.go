package intercept

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"
)

const (
	reasonPlaceholder     = "{{ REASON }}"
	blockedURLPlaceholder = "{{ BLOCKED_URL }}"
	contentTypeHTML       = "text/html; charset=utf-8"
)

// BlockPage renders the body of denial responses
type BlockPage struct {
	templatePath string
}

// NewBlockPage creates a block page using the configured template file
func NewBlockPage(cfg config.BlockPage) *BlockPage {
	return &BlockPage{templatePath: cfg.Template}
}

// Render returns the HTML body for a blocked URL. The template is read on every call,
// if it can't be read the built-in page is used.
func (p *BlockPage) Render(ctx context.Context, reason, blockedURL string) string {
	if p.templatePath == "" {
		return fallbackPage(reason)
	}

	content, err := p.readTemplate()
	if err != nil {
		logger := log.FromCtx(ctx).WithField("template", p.templatePath)

		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("block page template not found, using fallback HTML")
		} else {
			logger.Error("can't read block page template: ", err)
		}

		return fallbackPage(reason)
	}

	return strings.NewReplacer(
		reasonPlaceholder, reason,
		blockedURLPlaceholder, blockedURL,
	).Replace(content)
}

func (p *BlockPage) readTemplate() (string, error) {
	content, err := os.ReadFile(p.templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", model.ErrNotFound, err)
		}

		return "", fmt.Errorf("%w: %s", model.ErrStorageFailure, err)
	}

	return string(content), nil
}

// Response creates the denial response for req
func (p *BlockPage) Response(ctx context.Context, req *http.Request, reason, blockedURL string) *http.Response {
	body := p.Render(ctx, reason, blockedURL)

	header := make(http.Header)
	header.Set("Content-Type", contentTypeHTML)
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set(BlockReasonHeader, reason)

	return &http.Response{
		Status:        "403 Forbidden",
		StatusCode:    http.StatusForbidden,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func fallbackPage(reason string) string {
	return "<h1>Access Denied by A.R.G.U.S.</h1><p>Reason: " + reason + "</p>"
}
