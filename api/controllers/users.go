package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type issueCredentialRequest struct {
	Name     string `json:"name" validate:"max=200"`
	PhotoRef string `json:"photoRef" validate:"max=2048"`
}

// IssueCredential upserts the customer named by {email} and returns a bearer token.
func IssueCredential(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		email, err := url.PathUnescape(chi.URLParam(r, "email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid email"))
			return
		}

		var payload issueCredentialRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.IssueCredential(r.Context(), customers.IssueInput{
			Email:    email,
			Name:     validators.SanitizeString(payload.Name, 200),
			PhotoRef: validators.SanitizeString(payload.PhotoRef, 2048),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithCustomerEmail(r.Context(), result.Customer.Email), "customer.credential.issued")
		}
		responses.WriteSuccess(w, result)
	}
}
