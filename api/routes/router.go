package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/estimates-backend/api/controllers"
	estimatecontrollers "github.com/angelmondragon/estimates-backend/api/controllers/estimates"
	usercontrollers "github.com/angelmondragon/estimates-backend/api/controllers/users"
	"github.com/angelmondragon/estimates-backend/api/middleware"
	"github.com/angelmondragon/estimates-backend/internal/estimates"
	"github.com/angelmondragon/estimates-backend/pkg/config"
	"github.com/angelmondragon/estimates-backend/pkg/logger"
	"github.com/angelmondragon/estimates-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Estimates   estimates.Service
	Stats       estimates.StatsService
	Users       usercontrollers.Store
	Groups      usercontrollers.Classifier
	Now         func() time.Time
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger
	now := p.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	detail := estimatecontrollers.DetailOptions{OverdueAfter: cfg.Estimate.OverdueAfter, Now: now}
	export := estimatecontrollers.ExportOptions{
		Sender:     cfg.Billing,
		GroupOrder: cfg.Estimate.GroupOrder,
		BCC:        cfg.Estimate.BCC,
	}

	r.Route("/api/v1", func(r chi.Router) {
		if p.Idempotency != nil {
			r.Use(middleware.Idempotency(p.Idempotency, cfg.Redis.IdempotencyTTL, logg))
		}

		r.Route("/estimates", func(r chi.Router) {
			r.Get("/", estimatecontrollers.List(p.Estimates, logg))
			r.Post("/", estimatecontrollers.Create(p.Estimates, detail, logg))
			r.Get("/stats", estimatecontrollers.Stats(p.Stats, now, logg))

			r.Route("/{estimateId}", func(r chi.Router) {
				r.Get("/", estimatecontrollers.Detail(p.Estimates, detail, logg))
				r.Patch("/", estimatecontrollers.Update(p.Estimates, detail, logg))
				r.Delete("/", estimatecontrollers.Delete(p.Estimates, logg))
				r.Post("/duplicate", estimatecontrollers.Duplicate(p.Estimates, detail, logg))
				r.Post("/convert", estimatecontrollers.Convert(p.Estimates, logg))
				r.Post("/status", estimatecontrollers.ChangeStatus(p.Estimates, detail, logg))
				r.Post("/cancel", estimatecontrollers.Cancel(p.Estimates, detail, logg))
				r.Get("/export/{format}", estimatecontrollers.Export(p.Estimates, export, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", usercontrollers.List(p.Users, logg))
			r.Post("/", usercontrollers.Create(p.Users, logg))
			r.Get("/{userId}", usercontrollers.Detail(p.Users, p.Groups, logg))
		})
	})

	return r
}
