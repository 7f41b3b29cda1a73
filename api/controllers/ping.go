package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
)

const banner = "storefront api"

// Root answers the bare service URL with a banner.
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"service": banner, "status": "ok"})
	}
}

// WhoAmI echoes the identity attached by the auth middleware.
func WhoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"email": middleware.CustomerEmailFromContext(r.Context())})
	}
}
