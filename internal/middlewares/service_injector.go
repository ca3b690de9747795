package middlewares

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Renal37/fuel-orders/internal/logger"
	"github.com/Renal37/fuel-orders/internal/models"
	"go.uber.org/zap"
)

// Services are the dependencies handlers resolve per request. Audit is nil
// when no audit store is configured.
type Services struct {
	Auth  models.AuthService
	JWT   models.JWTService
	Order models.OrderService
	Audit models.AuditService
}

type ServiceKey int

const (
	AuthServiceKey ServiceKey = iota
	JwtServiceKey
	OrderServiceKey
	AuditServiceKey
)

func (k ServiceKey) String() string {
	switch k {
	case AuthServiceKey:
		return "auth"
	case JwtServiceKey:
		return "jwt"
	case OrderServiceKey:
		return "order"
	case AuditServiceKey:
		return "audit"
	}
	return fmt.Sprintf("service#%d", int(k))
}

type servicesContextKey struct{}

func (s Services) lookup(key ServiceKey) interface{} {
	switch key {
	case AuthServiceKey:
		return s.Auth
	case JwtServiceKey:
		return s.JWT
	case OrderServiceKey:
		return s.Order
	case AuditServiceKey:
		return s.Audit
	}
	return nil
}

func ServiceInjectorMiddleware(services Services) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), servicesContextKey{}, services)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetServiceFromContext resolves the service stored under serviceKey. When it
// is missing a 500 is written and nil returned.
func GetServiceFromContext[Service interface{}](w http.ResponseWriter, r *http.Request, serviceKey ServiceKey) *Service {
	services, _ := r.Context().Value(servicesContextKey{}).(Services)

	found, ok := services.lookup(serviceKey).(Service)
	if !ok {
		logger.Log.Error("service is not configured", zap.Stringer("key", serviceKey), zap.String("path", r.URL.Path))
		http.Error(w, fmt.Sprintf("%s service is not configured", serviceKey), http.StatusInternalServerError)
		return nil
	}

	return &found
}
