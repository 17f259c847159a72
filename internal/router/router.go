package router

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pipegauge/internal/model"
)

var ErrEmptyLeadID = errors.New("empty lead id")

const (
	HomePath   = "/"
	leadPrefix = "/lead/"
)

// Route is the current location. LeadID is set only on detail routes.
type Route struct {
	Path   string
	LeadID string
}

func (r Route) IsHome() bool { return r.LeadID == "" }

// LeadPath is the detail location for id.
func LeadPath(id string) string { return leadPrefix + url.PathEscape(id) }

// Parse turns a path into a Route. Anything it doesn't recognise is home.
func Parse(path string) Route {
	rest, ok := strings.CutPrefix(path, leadPrefix)
	if !ok || rest == "" {
		return Route{Path: HomePath}
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return Route{Path: HomePath}
	}
	return Route{Path: path, LeadID: id}
}

// DefaultLeads is the catalog the simulation ships with.
func DefaultLeads() []model.Lead {
	return []model.Lead{
		{ID: "12345", Company: "Acme Corp", Status: "New", PotentialValue: 125000},
	}
}

// Router resolves lead ids to detail routes and keeps a back stack. Every
// non-empty id has a detail view: ids missing from the catalog resolve to
// the template record carrying the requested id.
type Router struct {
	log *zap.SugaredLogger

	mu       sync.Mutex
	leads    map[string]model.Lead
	template model.Lead
	current  Route
	history  []Route
}

func New(log *zap.SugaredLogger, leads ...model.Lead) *Router {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	r := &Router{
		log:     log,
		leads:   make(map[string]model.Lead, len(leads)),
		current: Route{Path: HomePath},
	}
	if len(leads) > 0 {
		r.template = leads[0]
	} else {
		r.template = DefaultLeads()[0]
	}
	for _, l := range leads {
		r.leads[l.ID] = l
	}
	return r
}

// Navigate moves to the detail route of id. An empty id is an error and
// leaves the route unchanged.
func (r *Router) Navigate(id string) error {
	if id == "" {
		return ErrEmptyLeadID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, r.current)
	r.current = Route{Path: LeadPath(id), LeadID: id}
	r.log.Infow("navigate", "path", r.current.Path)
	return nil
}

// Back pops the back stack, stopping at home.
func (r *Router) Back() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.history); n > 0 {
		r.current = r.history[n-1]
		r.history = r.history[:n-1]
	} else {
		r.current = Route{Path: HomePath}
	}
	return r.current
}

func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Resolve returns the lead record for id, falling back to the template.
func (r *Router) Resolve(id string) (model.Lead, error) {
	if id == "" {
		return model.Lead{}, ErrEmptyLeadID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		return l, nil
	}
	r.log.Debugw("lead not in catalog, using template", "lead_id", id)
	l := r.template
	l.ID = id
	return l, nil
}
