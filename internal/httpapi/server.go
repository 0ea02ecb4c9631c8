// Package httpapi is the thin outer HTTP surface the spec assumes but does
// not fully specify (§1: "a thin outer HTTP/CLI surface is assumed but not
// specified"). It exposes GET /recommendations, POST /feedback, GET /stats,
// and POST /optimize over the Recommendation Engine, Learning Engine, and
// Optimization Cycle, following the controller-over-gin.Engine shape the
// suprachakra order_service/customer_intelligence_platform services use for
// their own HTTP surfaces.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rcliao/recoengine/internal/learning"
	"github.com/rcliao/recoengine/internal/metrics"
	"github.com/rcliao/recoengine/internal/optimize"
	"github.com/rcliao/recoengine/internal/recommend"
	"github.com/rcliao/recoengine/internal/reflexion"
	"github.com/rcliao/recoengine/internal/store"
)

// Server wires the three engines behind a gin.Engine. It holds no request
// state of its own; every field is a shared, concurrency-safe collaborator.
type Server struct {
	store    *store.Store
	rec      *recommend.Engine
	learn    *learning.Engine
	cycle    *optimize.Cycle
	reflex   *reflexion.Memory
	log      zerolog.Logger
	poolSize int
}

// New builds a Server. poolSize bounds how many candidates ListCandidatePool
// draws per request; 0 selects the default. reflex may be nil, in which case
// feedback episodes are simply not recorded (spec §4.7 names reflexion
// memory as optional).
func New(st *store.Store, rec *recommend.Engine, learn *learning.Engine, cycle *optimize.Cycle, reflex *reflexion.Memory, log zerolog.Logger, poolSize int) *Server {
	return &Server{store: st, rec: rec, learn: learn, cycle: cycle, reflex: reflex, log: log, poolSize: poolSize}
}

// Router builds the gin.Engine, with recovery and access-log middleware
// ahead of the route table.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLogMiddleware(s.log))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/recommendations", s.handleRecommendations)
	r.POST("/feedback", s.handleFeedback)
	r.GET("/stats", s.handleStats)
	r.POST("/optimize", s.handleOptimize)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
