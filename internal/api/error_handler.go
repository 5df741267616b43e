package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/core/domain"
)

// apiErrorResponse is the production envelope; devErrorResponse adds the
// diagnostic fields development mode exposes.
type apiErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type devErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// NewHTTPErrorHandler returns the central error normalization layer. The
// development/production strategy is selected once here, not re-checked per
// call site. All errors from middleware, handlers, and services funnel
// through this handler; nothing downstream renders its own failures.
func NewHTTPErrorHandler(isProd bool, log zerolog.Logger) echo.HTTPErrorHandler {
	if isProd {
		return func(err error, c echo.Context) {
			if c.Response().Committed {
				return
			}
			sendErrorProd(classify(err), err, log, c)
		}
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		sendErrorDev(classify(err), err, c)
	}
}

// classify reclassifies generic and low-level errors into AppError. Anything
// unrecognized becomes a non-operational internal error.
func classify(err error) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var castErr *domain.CastError
	if errors.As(err, &castErr) {
		return domain.BadRequest("Invalid %s: %s.", castErr.Field, castErr.Value)
	}

	if mongo.IsDuplicateKeyError(err) {
		return domain.BadRequest("Duplicate field value: %s. Please use another value!", duplicateValue(err))
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return domain.BadRequest("Invalid input data. %s", joinValidationMessages(validationErrs))
	}

	if errors.Is(err, domain.ErrTokenInvalid) {
		return domain.Unauthorized("Invalid token! Please log in again")
	}
	if errors.Is(err, domain.ErrTokenExpired) {
		return domain.Unauthorized("Your token has expired! Please log in again")
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFound("No document found with that ID")
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return domain.NewAppError(fmt.Sprintf("%v", httpErr.Message), httpErr.Code)
	}

	return domain.Internal(err)
}

func sendErrorDev(appErr *domain.AppError, cause error, c echo.Context) {
	if isAPIPath(c) {
		_ = c.JSON(appErr.Code, devErrorResponse{
			Status:  appErr.Status(),
			Error:   cause.Error(),
			Message: appErr.Message,
			Stack:   string(debug.Stack()),
		})
		return
	}
	renderErrorPage(c, appErr.Code, appErr.Message)
}

func sendErrorProd(appErr *domain.AppError, cause error, log zerolog.Logger, c echo.Context) {
	if !appErr.Operational {
		// Programming or unknown error: log everything, leak nothing.
		log.Error().
			Err(cause).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("unhandled error")

		if isAPIPath(c) {
			_ = c.JSON(http.StatusInternalServerError, apiErrorResponse{
				Status:  "error",
				Message: "Something went very wrong!",
			})
			return
		}
		renderErrorPage(c, http.StatusInternalServerError, "Please try again later.")
		return
	}

	if isAPIPath(c) {
		_ = c.JSON(appErr.Code, apiErrorResponse{
			Status:  appErr.Status(),
			Message: appErr.Message,
		})
		return
	}
	renderErrorPage(c, appErr.Code, appErr.Message)
}

func isAPIPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api")
}

func renderErrorPage(c echo.Context, code int, msg string) {
	if c.Echo().Renderer != nil {
		if err := c.Render(code, "error", map[string]any{
			"title": "Something went wrong",
			"msg":   msg,
		}); err == nil {
			return
		}
	}
	_ = c.HTML(code, fmt.Sprintf("<h1>Something went wrong</h1><p>%s</p>", msg))
}

var quotedValueRe = regexp.MustCompile(`"(\\?.)*?"|'(\\?.)*?'`)

// duplicateValue extracts the offending value from the driver's duplicate
// key message text.
func duplicateValue(err error) string {
	match := quotedValueRe.FindString(err.Error())
	if match == "" {
		return "value"
	}
	return strings.Trim(match, `"'`)
}

func joinValidationMessages(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldErrorMessage(fe))
	}
	return strings.Join(msgs, ". ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
