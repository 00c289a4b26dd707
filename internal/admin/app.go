// Package admin exposes the operational HTTP surface: health probes,
// Prometheus metrics, and a JWT-guarded inventory view. It never
// mutates the catalog; hot-reload stays out of scope.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hifzanazir00781/OnlineShoppingStore/internal/catalog"
	"github.com/hifzanazir00781/OnlineShoppingStore/internal/persist"
	"github.com/hifzanazir00781/OnlineShoppingStore/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry
	Metrics  *kit.Metrics

	Store *catalog.Store
	Sink  persist.Sink

	JWT          *TokenMaker
	User         string
	PasswordHash []byte
	TokenTTL     time.Duration

	MetricsToken string
	LoginLimiter *kit.IPRateLimiter
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))
	}

	if deps.Registry != nil {
		r.With(kit.MetricsAuth(deps.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	login := loginHandler(deps)
	if deps.LoginLimiter != nil {
		r.With(deps.LoginLimiter.Middleware).Post("/login", login)
	} else {
		r.Post("/login", login)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(AuthJWT(deps.JWT))
		pr.Get("/products", productsHandler(deps))
	})

	return r
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Sink.Ping(ctx); err != nil {
			if deps.Log != nil {
				deps.Log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

type loginReq struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

func loginHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(deps.PasswordHash) == 0 {
			kit.WriteError(w, r, http.StatusForbidden, "login disabled", nil)
			return
		}

		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
			return
		}

		if req.User != deps.User ||
			bcrypt.CompareHashAndPassword(deps.PasswordHash, []byte(req.Password)) != nil {
			kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}

		token, err := deps.JWT.New(req.User, deps.TokenTTL)
		if err != nil {
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}

		kit.WriteJSON(w, http.StatusOK, loginResp{
			Token:     token,
			ExpiresIn: int64(deps.TokenTTL.Seconds()),
		})
	}
}

type productResp struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	Description string  `json:"description"`
}

func productsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := deps.Store.Snapshot()

		out := make([]productResp, 0, len(items))
		for _, it := range items {
			out = append(out, productResp{
				Name:        it.Name,
				Price:       it.Price,
				Stock:       it.Stock,
				Description: it.Description,
			})
		}
		kit.WriteJSON(w, http.StatusOK, out)
	}
}
