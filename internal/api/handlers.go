package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mwhite7112/woodpantry-recommender/internal/embedding"
	"github.com/mwhite7112/woodpantry-recommender/internal/pantry"
	"github.com/mwhite7112/woodpantry-recommender/internal/recommend"
	"github.com/mwhite7112/woodpantry-recommender/internal/store"
)

// Recommender is the slice of recommend.Service the HTTP layer needs.
type Recommender interface {
	Inventory(ctx context.Context) ([]pantry.InventoryItem, error)
	RecommendByContent(ctx context.Context, selected []string) ([]recommend.Recommendation, error)
	RecommendByEmbedding(ctx context.Context, userID, k int) ([]recommend.Recommendation, error)
	Train(ctx context.Context) (*embedding.Model, error)
	Model() *embedding.Model
	DefaultUser() int
}

var validate = validator.New()

func NewRouter(svc Recommender, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/inventory", handleGetInventory(svc))
	r.Post("/recommendations/content", handlePostContent(svc))
	r.Get("/recommendations/embedding", handleGetEmbedding(svc))

	r.Get("/model", handleGetModel(svc))
	r.Post("/model/train", handlePostTrain(svc))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok")) //nolint:errcheck
}

type inventoryItem struct {
	Name           string  `json:"name"`
	ExpirationDate string  `json:"expiration_date"`
	PriorityScore  float64 `json:"priority_score"`
}

func handleGetInventory(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Inventory(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]inventoryItem, 0, len(items))
		for _, it := range items {
			out = append(out, inventoryItem{
				Name:           it.Name,
				ExpirationDate: it.ExpirationDate.Format(time.DateOnly),
				PriorityScore:  it.PriorityScore,
			})
		}
		jsonOK(w, out)
	}
}

// maxContentBody bounds the content request body; 500 items of 128
// characters fit with room to spare.
const maxContentBody = 1 << 20

type contentRequest struct {
	Items []string `json:"items" validate:"max=500,dive,required,max=128"`
}

// handlePostContent ranks recipes against the selected inventory items.
//
// Accepts either a JSON body {"items": [...]} or a form post with repeated
// inventory_items fields. No selection yields an empty list.
func handlePostContent(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxContentBody)

		var req contentRequest
		if isForm(r) {
			if err := r.ParseForm(); err != nil {
				writeBodyError(w, err, "invalid form body")
				return
			}
			req.Items = r.PostForm["inventory_items"]
		} else {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeBodyError(w, err, "invalid request body")
				return
			}
			if len(body) > 0 {
				if err := json.Unmarshal(body, &req); err != nil {
					jsonError(w, "invalid request body", http.StatusBadRequest)
					return
				}
			}
		}

		if err := validate.Struct(req); err != nil {
			jsonError(w, "items must be non-empty names of at most 128 characters", http.StatusBadRequest)
			return
		}

		recs, err := svc.RecommendByContent(r.Context(), req.Items)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		jsonOK(w, recs)
	}
}

// handleGetEmbedding serves model-based recommendations.
//
// Query params:
//   - user_id=N: user to recommend for (default: configured default user)
//   - k=N: number of recipes to return (default: configured top-k)
func handleGetEmbedding(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := svc.DefaultUser()
		if s := r.URL.Query().Get("user_id"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				jsonError(w, "user_id must be a non-negative integer", http.StatusBadRequest)
				return
			}
			userID = n
		}

		k := 0
		if s := r.URL.Query().Get("k"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				jsonError(w, "k must be a positive integer", http.StatusBadRequest)
				return
			}
			k = n
		}

		recs, err := svc.RecommendByEmbedding(r.Context(), userID, k)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		jsonOK(w, recs)
	}
}

func handleGetModel(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := svc.Model()
		if m == nil {
			writeServiceError(w, recommend.ErrModelNotReady)
			return
		}
		jsonOK(w, m.Metadata())
	}
}

// handlePostTrain retrains synchronously. Meant for operators; the serving
// path never trains on its own.
func handlePostTrain(svc Recommender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.Train(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		jsonOK(w, m.Metadata())
	}
}

func writeBodyError(w http.ResponseWriter, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, msg, http.StatusBadRequest)
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var perr *store.ParseError
	switch {
	case errors.Is(err, recommend.ErrNoData):
		jsonError(w, recommend.ErrNoData.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, recommend.ErrModelNotReady):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, recommend.ErrUnknownUser):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &perr):
		jsonError(w, "malformed data: "+perr.Error(), http.StatusInternalServerError)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		jsonError(w, "recommendation failed: "+err.Error(), http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
