// Package ctx carries request-scoped identity through fasthttp's
// user-value map: the signed-in operator on dashboard routes, the
// authorizing API key on ingest routes.
package ctx

import (
	"github.com/valyala/fasthttp"

	dbpkg "authpulse/internal/db"
)

const (
	operatorKey = "operator"
	apiKeyKey   = "apiKey"
)

// SetUser attaches the signed-in operator to the request.
func SetUser(ctx *fasthttp.RequestCtx, user *dbpkg.User) {
	ctx.SetUserValue(operatorKey, user)
}

// UserFromCtx returns the signed-in operator, if any.
func UserFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	u, ok := ctx.UserValue(operatorKey).(*dbpkg.User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}

// SetAPIKey attaches the API key that authorized an ingest request.
func SetAPIKey(ctx *fasthttp.RequestCtx, apiKey *dbpkg.APIKey) {
	ctx.SetUserValue(apiKeyKey, apiKey)
}

// APIKeyFromCtx returns the authorizing API key, if any. Ingest
// handlers use it to tag recorded events with the reporting source.
func APIKeyFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.APIKey, bool) {
	k, ok := ctx.UserValue(apiKeyKey).(*dbpkg.APIKey)
	if !ok || k == nil {
		return nil, false
	}
	return k, true
}
