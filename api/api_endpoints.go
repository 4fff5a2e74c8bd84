package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/model"
	"github.com/0xERR0R/argus/rules"
	"github.com/0xERR0R/argus/util"

	"github.com/go-chi/chi/v5"
)

const (
	contentTypeHeader = "content-type"
	jsonContentType   = "application/json"
)

// Endpoint exposes the facade over HTTP
type Endpoint struct {
	facade *Facade
}

// RegisterEndpoints registers the facade as HTTP endpoints
func RegisterEndpoints(router chi.Router, facade *Facade) {
	e := &Endpoint{facade: facade}

	router.Get(PathLogs, e.apiLogs)
	router.Delete(PathLogs, e.apiClearLogs)
	router.Get(PathDomainRules, e.apiDomainRules)
	router.Post(PathDomainRules, e.apiAddDomainRule)
}

// apiLogs is the http endpoint to get the most recent log entries
// @Summary Recent logs
// @Description get the most recent log entries, newest first
// @Tags logs
// @Param limit query int false "max number of entries (default 250)"
// @Produce  json
// @Success 200 {object} api.LogList "Log entries"
// @Failure 400   "Wrong limit format"
// @Router /logs [get]
func (e *Endpoint) apiLogs(rw http.ResponseWriter, req *http.Request) {
	limit := DefaultLogLimit

	if limitParam := req.URL.Query().Get("limit"); len(limitParam) > 0 {
		l, err := strconv.Atoi(limitParam)
		if err != nil {
			log.Log().Errorf("wrong limit format '%s'", log.EscapeInput(limitParam))
			writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid limit '%s'", limitParam)})

			return
		}

		limit = l
	}

	entries := e.facade.RecentLogs(req.Context(), limit)
	if entries == nil {
		entries = LogList{}
	}

	writeJSON(rw, http.StatusOK, LogList(entries))
}

// apiClearLogs is the http endpoint to delete all log entries
// @Summary Clear logs
// @Description delete all log entries
// @Tags logs
// @Produce  json
// @Success 200 {object} api.StatusResponse "All logs cleared"
// @Failure 500 {object} api.ErrorResponse "Logs couldn't be deleted"
// @Router /logs [delete]
func (e *Endpoint) apiClearLogs(rw http.ResponseWriter, req *http.Request) {
	if err := e.facade.ClearLogs(req.Context()); err != nil {
		log.Log().Error("can't clear logs: ", err)
		writeJSON(rw, http.StatusInternalServerError, ErrorResponse{Error: "Failed to clear logs"})

		return
	}

	writeJSON(rw, http.StatusOK, StatusResponse{Status: "success", Message: "All logs cleared."})
}

// apiDomainRules is the http endpoint to get the blocked domains
// @Summary Domain rules
// @Description get the domains from the rule file
// @Tags rules
// @Produce  json
// @Success 200 {array} string "Blocked domains"
// @Failure 500 {object} api.ErrorResponse "Rule file couldn't be read"
// @Router /rules/domains [get]
func (e *Endpoint) apiDomainRules(rw http.ResponseWriter, _ *http.Request) {
	domains, err := e.facade.DomainRules()
	if err != nil {
		log.Log().Error("can't read domain rules: ", err)
		writeJSON(rw, http.StatusInternalServerError, ErrorResponse{Error: "Failed to read domain rules"})

		return
	}

	if domains == nil {
		domains = []string{}
	}

	writeJSON(rw, http.StatusOK, domains)
}

// apiAddDomainRule is the http endpoint to block a new domain
// @Summary Add domain rule
// @Description append a domain to the rule file, it is active after the next reload
// @Tags rules
// @Accept  json
// @Produce  json
// @Param body body api.AddDomainRequest true "domain"
// @Success 201 {object} api.StatusResponse "Domain added"
// @Success 200 {object} api.StatusResponse "Domain already present"
// @Failure 400 {object} api.ErrorResponse "Domain missing or invalid"
// @Failure 500 {object} api.ErrorResponse "Rule file couldn't be written"
// @Router /rules/domains [post]
func (e *Endpoint) apiAddDomainRule(rw http.ResponseWriter, req *http.Request) {
	var body AddDomainRequest

	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(rw, http.StatusBadRequest,
			ErrorResponse{Error: `JSON data with a non-empty "domain" key is required.`})

		return
	}

	domain, res, err := e.facade.AddDomainRule(req.Context(), body.Domain)

	switch {
	case errors.Is(err, model.ErrInvalidArgument) && domain == "":
		writeJSON(rw, http.StatusBadRequest,
			ErrorResponse{Error: `JSON data with a non-empty "domain" key is required.`})
	case errors.Is(err, model.ErrInvalidArgument):
		writeJSON(rw, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		log.Log().Error("can't add domain rule: ", err)
		writeJSON(rw, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	case res == rules.AppendSkipped:
		writeJSON(rw, http.StatusOK, StatusResponse{
			Status:  "skipped",
			Message: fmt.Sprintf("Domain \"%s\" already exists.", domain),
		})
	default:
		writeJSON(rw, http.StatusCreated, StatusResponse{Status: "success", Domain: domain})
	}
}

func writeJSON(rw http.ResponseWriter, status int, body interface{}) {
	response, err := json.Marshal(body)
	util.LogOnError("unable to marshal response ", err)

	rw.Header().Set(contentTypeHeader, jsonContentType)
	rw.WriteHeader(status)

	_, err = rw.Write(response)
	util.LogOnError("unable to write response ", err)
}
