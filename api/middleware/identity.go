package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const userIDHeader = "X-User-Id"

// Identity reads the acting user from the trusted gateway header. The
// gateway terminates authentication; this service only consumes the
// identifier it forwards. The header is optional, but when present it must
// be a valid UUID.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(userIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			if _, err := uuid.Parse(raw); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "X-User-Id must be a UUID"))
				return
			}

			ctx := WithUserID(r.Context(), raw)
			if logg != nil {
				ctx = logg.WithUserID(ctx, raw)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
