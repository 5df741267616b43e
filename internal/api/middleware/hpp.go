package middleware

import (
	"net/url"

	"github.com/labstack/echo/v4"
)

// Fields that legitimately accept repeated query values (filtering/sorting).
var hppWhitelist = map[string]struct{}{
	"duration":        {},
	"ratingsAverage":  {},
	"ratingsQuantity": {},
	"maxGroupSize":    {},
	"difficulty":      {},
	"price":           {},
}

// PreventParamPollution collapses duplicate query parameters to their last
// value, except for whitelisted filter fields.
func PreventParamPollution() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			values := req.URL.Query()

			cleaned := url.Values{}
			for key, vals := range values {
				if _, ok := hppWhitelist[key]; ok || len(vals) == 1 {
					cleaned[key] = vals
					continue
				}
				cleaned.Set(key, vals[len(vals)-1])
			}

			req.URL.RawQuery = cleaned.Encode()
			return next(c)
		}
	}
}
