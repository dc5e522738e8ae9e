package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/merkur-erp/erp-api/internal/config"
	"go.uber.org/zap"
)

// CORS builds the cross-origin policy from configuration. A wildcard or an
// empty origin list is only permissive in development; production without an
// explicit origin list denies every cross-origin request.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	allowAny := func(r *http.Request, origin string) bool { return origin != "" }
	isDev := environment == "development" || environment == "local" || environment == ""

	switch {
	case hasWildcard(cfg.AllowedOrigins):
		if !isDev {
			logger.Warn("CORS wildcard origin outside development",
				zap.String("environment", environment))
		}
		options.AllowOriginFunc = allowAny

	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured", zap.Strings("origins", cfg.AllowedOrigins))

	case isDev:
		options.AllowOriginFunc = allowAny
		logger.Info("CORS allowing all origins in development")

	default:
		// Empty AllowedOrigins would default to "*" inside the cors
		// package, so deny explicitly.
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, denying all cross-origin requests",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

func hasWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
