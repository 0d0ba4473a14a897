package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/negative-records-api/internal/middleware"
	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/service"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func int64Param(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// pageParams reads page/page_size query values, falling back to defaults on bad input.
func pageParams(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
