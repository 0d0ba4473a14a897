package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/negative-records-api/internal/middleware"
	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/service"
)

type dispatchRecorder struct {
	calls   int
	effects []models.Effect
	meta    service.RequestMeta
}

func (d *dispatchRecorder) Dispatch(ctx context.Context, meta service.RequestMeta, effects []models.Effect) {
	d.calls++
	d.meta = meta
	d.effects = append(d.effects, effects...)
}

func newTestContext(method, target, body string, claims *models.JWTClaims, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "handler-test")
	c.Request = req
	c.Params = params
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}
