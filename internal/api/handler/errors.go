package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"foodgram/internal/api/service"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{service.NonFieldErrors: []string{err.Error()}})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrNotRecipeAuthor):
		c.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrTagNotFound),
		errors.Is(err, service.ErrIngredientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// bindJSON decodes the request body and reports failures as a
// ValidationError keyed by the top-level json field.
func bindJSON(c *gin.Context, dest any) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) *service.ValidationError {
	verr := &service.ValidationError{}

	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			verr.Add(topLevelField(fe.Namespace()), fieldMessage(fe))
		}
	case errors.As(err, &typeErr):
		field := topLevelField(typeErr.Field)
		if field == "" {
			field = service.NonFieldErrors
		}
		verr.Add(field, fmt.Sprintf("expected a value of type %s", typeErr.Type.String()))
	case errors.As(err, &syntaxErr):
		verr.Add(service.NonFieldErrors, fmt.Sprintf("JSON parse error at offset %d", syntaxErr.Offset))
	case errors.Is(err, io.EOF):
		verr.Add(service.NonFieldErrors, "request body is empty")
	default:
		verr.Add(service.NonFieldErrors, err.Error())
	}
	return verr
}

// topLevelField turns "RecipeWriteRequest.ingredients[0].amount" or
// "ingredients.amount" into "ingredients".
func topLevelField(ns string) string {
	// validator namespaces start with the Go type name
	if i := strings.Index(ns, "."); i >= 0 && ns[0] >= 'A' && ns[0] <= 'Z' {
		ns = ns[i+1:]
	}
	if i := strings.IndexAny(ns, ".["); i >= 0 {
		ns = ns[:i]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return "enter a valid username, letters, digits and @/./+/-/_ only"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("ensure this field has at least %s elements", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}

// parseID reads a positive integer path parameter. Malformed ids are
// reported as notFound since no such resource can exist.
func parseID(c *gin.Context, name string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, notFound
	}
	return id, nil
}

// requestURL rebuilds the absolute URL of the current request for
// pagination links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}
