package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var (
	WithRoutes = func(routes ...Route) ConfigRouter {
		return func(router *Router) {
			router.AddRoutes(routes...)
		}
	}

	// WithRouteMiddleware aplica um middleware que recebe o padrão da rota em todas as rotas adicionadas depois dele
	WithRouteMiddleware = func(middleware func(path string) func(http.Handler) http.Handler) ConfigRouter {
		return func(router *Router) {
			router.routeMiddlewares = append(router.routeMiddlewares, middleware)
		}
	}
)

type Route struct {
	Path        string
	Method      string
	Handler     http.Handler
	Middlewares []func(http.Handler) http.Handler // Lista de middlewares específicos para esta rota
}

type Router struct {
	router           *httprouter.Router
	routeMiddlewares []func(path string) func(http.Handler) http.Handler
}

type ConfigRouter func(router *Router)

func New(configs ...ConfigRouter) *Router {
	router := &Router{
		router: httprouter.New(),
	}

	for _, config := range configs {
		config(router)
	}

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// AddRoutes adiciona rotas ao router com seus middlewares específicos
func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		var handler http.Handler = route.Handler

		// Aplicar middlewares específicos da rota, do último para o primeiro
		for i := len(route.Middlewares) - 1; i >= 0; i-- {
			middleware := route.Middlewares[i]
			handler = middleware(handler)
		}

		for i := len(r.routeMiddlewares) - 1; i >= 0; i-- {
			handler = r.routeMiddlewares[i](route.Path)(handler)
		}

		r.router.Handler(route.Method, route.Path, handler)
	}
}
