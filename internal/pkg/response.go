package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/simp-lee/pagination"

	"github.com/tracnorth/site/internal/domain"
)

// Response is the standard JSON envelope for non-list API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation failures.
// Errors maps each offending field to its list of messages, so clients can
// render them inline next to the originating inputs.
type ValidationErrorResponse struct {
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 JSON response with the given data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    data,
	})
}

// List sends a page of records as the flat list envelope
// {data, current_page, last_page} that every listing consumer relies on.
func List[T any](c *gin.Context, result *pagination.Pagination[T]) {
	c.JSON(http.StatusOK, PageEnvelope(result))
}

// PageEnvelope converts a repository page result to the wire envelope.
// The paginator reports one page for an empty collection; the envelope
// reports last_page 0 so clients can distinguish "no rows at all".
func PageEnvelope[T any](result *pagination.Pagination[T]) domain.Page[T] {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	lastPage := result.TotalPages
	if result.TotalItems == 0 {
		lastPage = 0
	}
	return domain.Page[T]{
		Data:        items,
		CurrentPage: result.CurrentPage,
		LastPage:    lastPage,
	}
}

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned. Internal
// details are never leaked to the client.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := "internal error"
	if errors.As(err, &appErr) && appErr.Code != domain.CodeInternal {
		msg = appErr.Message
	}

	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// FieldErrors sends a 400 response with an explicit field → messages map.
// Used when validation happens outside gin binding, e.g. file fields.
func FieldErrors(c *gin.Context, fieldErrors map[string][]string) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationErrorResponse and returns false.
// Because obj is available, JSON struct tags are used for field names.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationError(c, err, obj)
		return false
	}
	return true
}

// validationError sends a 400 validation error response, reflecting on obj
// to prefer JSON tag names when the concrete type is available.
func validationError(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Not a validation error; malformed body or wrong content type.
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			Data:    nil,
		})
		return
	}

	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fieldErrors[name] = append(fieldErrors[name], msg)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if name := parseJSONTagName(tag); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
