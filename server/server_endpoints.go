package server

import (
	"html/template"
	"net/http"

	"github.com/0xERR0R/argus/api"
	"github.com/0xERR0R/argus/config"
	"github.com/0xERR0R/argus/log"
	"github.com/0xERR0R/argus/util"
	"github.com/0xERR0R/argus/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// PathHealthz health check endpoint
const PathHealthz = "/healthz"

func createRouter(cfg *config.Config, facade *api.Facade) *chi.Mux {
	router := chi.NewRouter()

	configureCorsHandler(router)

	configureDebugHandler(router)

	configureRootHandler(cfg, router)

	router.Get(PathHealthz, healthz)

	api.RegisterEndpoints(router, facade)

	return router
}

func healthz(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")

	_, err := rw.Write([]byte(`{"status":"ok"}`))
	util.LogOnError("can't write health check response: ", err)
}

func configureRootHandler(cfg *config.Config, router *chi.Mux) {
	t := template.Must(template.New("index").Parse(web.IndexTmpl))

	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		type HandlerLink struct {
			URL   string
			Title string
		}

		type PageData struct {
			Links     []HandlerLink
			Version   string
			BuildTime string
		}

		pd := PageData{
			Links: []HandlerLink{
				{URL: api.PathLogs, Title: "Recent logs"},
				{URL: api.PathDomainRules, Title: "Blocked domains"},
				{URL: "/debug/", Title: "Go Profiler"},
			},
			Version:   util.Version,
			BuildTime: util.BuildTime,
		}

		if cfg.Prometheus.Enable {
			pd.Links = append(pd.Links, HandlerLink{
				URL:   cfg.Prometheus.Path,
				Title: "Prometheus endpoint",
			})
		}

		if err := t.Execute(writer, pd); err != nil {
			log.Log().Error("can't write index template: ", err)
			writer.WriteHeader(http.StatusInternalServerError)
		}
	})
}

func configureDebugHandler(router *chi.Mux) {
	router.Mount("/debug", middleware.Profiler())
}

func configureCorsHandler(router *chi.Mux) {
	crs := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(crs.Handler)
}
