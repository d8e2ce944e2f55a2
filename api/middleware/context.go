package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tradelinkhq/tradelink-backend/api/responses"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
)

const customerIDHeader = "X-Customer-Id"

type ctxKey string

const customerIDKey ctxKey = "customer_id"

// CustomerContext extracts the caller's customer id from the X-Customer-Id
// header when present. Authentication is handled upstream; this service
// trusts the header.
func CustomerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(customerIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			customerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "X-Customer-Id must be a valid uuid"))
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey, customerID)
			if logg != nil {
				ctx = logg.WithCustomerID(ctx, customerID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCustomer rejects requests that did not present a customer id.
func RequireCustomer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CustomerIDFromContext(r.Context()); !ok {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CustomerIDFromContext returns the customer id attached by CustomerContext.
func CustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerIDKey).(uuid.UUID)
	return id, ok
}
