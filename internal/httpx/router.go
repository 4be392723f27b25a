package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfontes/dashboard-comercial-go/internal/cache"
	"github.com/mfontes/dashboard-comercial-go/internal/models"
	"github.com/mfontes/dashboard-comercial-go/internal/sales"
	"github.com/mfontes/dashboard-comercial-go/internal/utils"
)

type Server struct {
	log   *slog.Logger
	cache *cache.Cache
	repos map[models.Team]sales.Repository
}

func NewRouter(log *slog.Logger, c *cache.Cache, repoA, repoB sales.Repository) http.Handler {
	s := &Server{
		log:   log,
		cache: c,
		repos: map[models.Team]sales.Repository{models.TeamA: repoA, models.TeamB: repoB},
	}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Route("/api", func(api chi.Router) {
		api.Get("/campaigns", s.getCampaigns)
		api.Post("/campaigns", s.postCampaign)
		api.Post("/campaigns/refresh", s.refreshCampaigns)
		api.Get("/sales/team-a", s.getSales(models.TeamA))
		api.Post("/sales/team-a", s.postSales(models.TeamA))
		api.Get("/sales/team-b", s.getSales(models.TeamB))
		api.Post("/sales/team-b", s.postSales(models.TeamB))
		api.Get("/kpis", s.getKPIs)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

// writeErr maps caller-input defects to 400 and everything else to 500.
func writeErr(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var re *models.InvalidRoleError
	var te *models.InvalidTeamError
	status := http.StatusInternalServerError
	if errors.As(err, &ve) || errors.As(err, &re) || errors.As(err, &te) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
