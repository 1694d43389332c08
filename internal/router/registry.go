package router

import "github.com/gin-gonic/gin"

// Module is a feature area that owns a slice of the route table. Modules are
// collected by the registry and mounted together under the API prefix.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry accumulates modules and shared middleware, then mounts everything
// under /api/v1 in one pass.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	shared  []gin.HandlerFunc
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api/v1")}
}

// Use appends middleware applied to every module's routes.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.shared = append(r.shared, mw...)
}

// Add queues a module for mounting.
func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll mounts the shared middleware and every queued module.
func (r *Registry) RegisterAll() {
	if len(r.shared) > 0 {
		r.API.Use(r.shared...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
