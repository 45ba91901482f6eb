package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"storefront-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			return name
		})
	})
}

// mapErrorToStatus follows the REST conventions of the store API: protected deletes
// answer 405, every other failed precondition is a bad request.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductProtected),
		errors.Is(err, domain.ErrCollectionProtected),
		errors.Is(err, domain.ErrCustomerHasOrders):
		return http.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrFailedPrecondition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(status, fieldErrors(verr.Fields))
		return
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(status, gin.H{"detail": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail(err)})
}

// detail strips the taxonomy prefix from wrapped sentinel messages.
func detail(err error) string {
	msg := err.Error()
	for _, base := range []error{
		domain.ErrNotFound, domain.ErrInvalidArgument, domain.ErrFailedPrecondition,
		domain.ErrPermissionDenied, domain.ErrUnauthenticated, domain.ErrConflict,
		domain.ErrUnavailable,
	} {
		if rest, ok := strings.CutPrefix(msg, base.Error()+": "); ok {
			return rest
		}
	}
	return msg
}

func fieldErrors(fields map[string]string) map[string][]string {
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		out[k] = []string{v}
	}
	return out
}

// bindError turns a binding failure into the same field map services produce.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &domain.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), validationMessage(fe))
		}
		return out
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
	}
	if errors.Is(err, io.EOF) {
		return domain.NewValidationError("non_field_errors", "No data provided.")
	}
	return domain.NewValidationError("non_field_errors", "JSON parse error - "+err.Error())
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return "Ensure this field has at least " + fe.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return "Ensure this field has no more than " + fe.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "oneof":
		return "Select a valid choice."
	default:
		return "Invalid value."
	}
}
