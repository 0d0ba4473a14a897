package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/service"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	got    string
}

func (v *validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	v.got = token
	return v.claims, v.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/records/:id", handlers...)
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/records/1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{UserID: 5, Role: models.RoleAffiliate}}
	var seen *models.JWTClaims
	r := newRouter(JWT(stub), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		seen = value.(*models.JWTClaims)
	})

	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer ").Code)

	rec := call(r, "bearer token-123")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token-123", stub.got)
	require.NotNil(t, seen)
	assert.Equal(t, int64(5), seen.UserID)

	stub.err = appErrors.Wrap(errors.New("expired"), appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid token")
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer token-123").Code)
}

func TestRequireAdmin(t *testing.T) {
	for role, want := range map[models.UserRole]int{
		models.RoleSuperAdmin: http.StatusOK,
		models.RoleAdmin:      http.StatusOK,
		models.RoleAffiliate:  http.StatusForbidden,
	} {
		stub := &validatorStub{claims: &models.JWTClaims{UserID: 1, Role: role}}
		r := newRouter(JWT(stub), RequireAdmin())
		assert.Equal(t, want, call(r, "Bearer t").Code, role)
	}

	r := newRouter(RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, call(r, "").Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/records/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	call(r, "")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, paths["/records/:id"])
	assert.True(t, paths["unmatched"])
}

func TestResponseMeta(t *testing.T) {
	var meta map[string]interface{}
	r := newRouter(WithResponseMeta(), func(c *gin.Context) {
		SetMeta(c, "remaining_credit", int64(4))
		meta = ExtractMeta(c)
	})
	call(r, "")
	require.NotNil(t, meta)
	assert.Equal(t, int64(4), meta["remaining_credit"])
	assert.Contains(t, meta, "processing_time_ms")
}
