package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName reports validation failures under the JSON key clients send
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrEmailTaken, "EMAIL_TAKEN"},
	{domain.ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{domain.ErrMissingToken, "MISSING_TOKEN"},
	{domain.ErrInvalidToken, "INVALID_TOKEN"},
	{domain.ErrInvalidTransition, "INVALID_TRANSITION"},
	{domain.ErrTrackingNumberRequired, "TRACKING_NUMBER_REQUIRED"},
	{domain.ErrStatusConflict, "STATUS_CONFLICT"},
	{domain.ErrInvalidSpreadsheet, "INVALID_SPREADSHEET"},
}

var kindStatus = map[domain.Kind]struct {
	status int
	code   string
}{
	domain.KindValidation:     {http.StatusBadRequest, "VALIDATION_ERROR"},
	domain.KindAuthentication: {http.StatusUnauthorized, "UNAUTHORIZED"},
	domain.KindAuthorization:  {http.StatusForbidden, "FORBIDDEN"},
	domain.KindNotFound:       {http.StatusNotFound, "NOT_FOUND"},
	domain.KindConflict:       {http.StatusConflict, "CONFLICT"},
}

// handleError translates a service error into the response envelope.
// Only sentinel text reaches the client; anything else is a 500.
func handleError(c *gin.Context, err error) {
	var fe *dto.FieldError
	if errors.As(err, &fe) {
		response.FieldError(c, fe.Field, fe.Err.Error())
		return
	}

	kind := domain.KindOf(err)
	mapping, ok := kindStatus[kind]
	if !ok {
		response.InternalError(c, err)
		return
	}

	code, message := mapping.code, err.Error()
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			code = ec.code
			break
		}
	}
	if sentinel := sentinelOf(err); sentinel != nil {
		message = sentinel.Error()
	}
	response.Error(c, mapping.status, code, message)
}

// sentinelOf finds the domain error err wraps so wrapped context stays server side
func sentinelOf(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if domain.KindOf(e) != domain.KindInfrastructure && errors.Unwrap(e) == nil {
			return e
		}
	}
	return nil
}

// bindJSON decodes the body into req; a failure is answered with a 400 naming the field
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(err)
		if field, message, ok := bindingFieldError(err); ok {
			response.FieldError(c, field, message)
		} else {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		}
		return false
	}
	return true
}

// bindingFieldError extracts the offending field from a decode or validation error
func bindingFieldError(err error) (field, message string, ok bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fieldPath(fe.Namespace()), validationMessage(fe), true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field, "must be " + jsonKind(typeErr.Type), true
	}

	var refErr *dto.ProductRefError
	if errors.As(err, &refErr) {
		return "items.id", refErr.Error(), true
	}

	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); strings.HasPrefix(msg, unknownPrefix) {
		return strings.Trim(strings.TrimPrefix(msg, unknownPrefix), `"`), "unknown field", true
	}
	return "", "", false
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// fieldPath drops the struct type prefix validator puts in front of the field path
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// pathID parses the :id route parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, "Resource not found")
		return 0, false
	}
	return id, true
}
