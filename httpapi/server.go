package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/parentsmadrasa/sessionkit"
	"github.com/parentsmadrasa/sessionkit/metrics/export/prometheus"
	"github.com/parentsmadrasa/sessionkit/middleware"
	"github.com/parentsmadrasa/sessionkit/profile"
	"github.com/rs/zerolog"
)

const (
	defaultIdleTTL = 30 * time.Minute
	screenKey      = "httpapi.screen"
)

// Options configures the HTTP binding.
type Options struct {
	AllowOrigins []string
	Log          zerolog.Logger
	// IdleTTL is how long an unused client is kept in memory. Signed-out
	// clients with nothing pending are dropped as soon as their request ends.
	IdleTTL time.Duration
}

// Server routes portal requests to session holders and profile screens.
type Server struct {
	engine  *sessionkit.Engine
	log     zerolog.Logger
	screen  profile.Options
	metrics *prometheus.Exporter
	router  *gin.Engine
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientEntry
	lastSweep time.Time
}

// clientEntry is the in-memory side of one client. refs counts requests in
// flight; an entry is only evicted at zero.
type clientEntry struct {
	holder   *sessionkit.Holder
	screen   *profile.Screen
	refs     int
	lastSeen time.Time
}

// New builds the router for engine.
func New(engine *sessionkit.Engine, opts Options) *Server {
	screenOpts := profile.OptionsFromConfig(engine.Config())
	screenOpts.Log = opts.Log
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}

	s := &Server{
		engine:  engine,
		log:     opts.Log,
		screen:  screenOpts,
		metrics: prometheus.NewExporter(engine),
		idleTTL: opts.IdleTTL,
		now:     time.Now,
		clients: make(map[string]*clientEntry),
	}
	s.lastSweep = s.now()
	s.setupRouter(opts)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter(opts Options) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.log))

	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language", middleware.ClientIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.healthCheck)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RequireClient(s.engine, s.log), s.bindClient)
	{
		api.POST("/session", s.signIn)
		api.GET("/session", s.getSession)
		api.POST("/session/restore", s.restoreSession)

		api.GET("/profile", s.getProfile)
		api.POST("/profile/logout", s.requestLogout)
		api.POST("/profile/logout/confirm", s.confirmLogout)
		api.POST("/profile/logout/cancel", s.cancelLogout)
		api.POST("/profile/logout/retry", s.retryLogout)
		api.POST("/profile/logout/force", s.forceLogout)
	}

	s.router = r
}

// bindClient pins the client's entry for the duration of the request. A new
// entry rehydrates the holder from storage, so eviction is invisible to
// clients whose session is still persisted.
func (s *Server) bindClient(c *gin.Context) {
	holder, _ := middleware.HolderFromContext(c)
	entry, fresh := s.acquire(holder)
	defer s.release(holder.ClientID(), entry)

	if fresh && !holder.State().Authenticated() {
		if _, err := holder.Restore(c.Request.Context()); err != nil {
			s.log.Debug().Err(err).Str("client_id", holder.ClientID()).Msg("session not restored on bind")
		}
	}
	c.Set(screenKey, entry.screen)
	c.Next()
}

func (s *Server) acquire(holder *sessionkit.Holder) (*clientEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.clients[holder.ClientID()]
	if ok && entry.holder != holder {
		// The engine dropped the holder under us; start over with the new one.
		ok = false
	}
	if !ok {
		entry = &clientEntry{
			holder: holder,
			screen: profile.NewScreen(holder, nil, s.screen),
		}
		s.clients[holder.ClientID()] = entry
	}
	entry.refs++
	entry.lastSeen = s.now()
	return entry, !ok
}

func (s *Server) release(clientID string, entry *clientEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.refs--
	now := s.now()
	entry.lastSeen = now
	if entry.refs == 0 && settled(entry) {
		s.evictLocked(clientID, entry)
	}

	if now.Sub(s.lastSweep) < s.idleTTL/4 {
		return
	}
	s.lastSweep = now
	for id, e := range s.clients {
		if e.refs == 0 && now.Sub(e.lastSeen) >= s.idleTTL {
			s.evictLocked(id, e)
		}
	}
}

// settled reports whether the entry holds nothing worth keeping: no user, no
// logout running and no dialog or failure on screen.
func settled(entry *clientEntry) bool {
	state := entry.holder.State()
	if state.User != nil || state.Loading {
		return false
	}
	phase := entry.screen.Phase()
	return phase == profile.PhaseIdle || phase.Terminal()
}

func (s *Server) evictLocked(clientID string, entry *clientEntry) {
	if s.clients[clientID] != entry {
		return
	}
	if !s.engine.Forget(clientID) {
		return
	}
	delete(s.clients, clientID)
}

// clientCount reports how many clients are held in memory.
func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) screenFor(c *gin.Context) (*sessionkit.Holder, *profile.Screen) {
	holder, _ := middleware.HolderFromContext(c)
	screen := c.MustGet(screenKey).(*profile.Screen)
	screen.SetLanguage(profile.MatchLanguage(c.GetHeader("Accept-Language")))
	return holder, screen
}
