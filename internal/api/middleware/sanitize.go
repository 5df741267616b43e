package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const multipartMemoryLimit = 32 << 20

// Sanitize strips document-query operator keys ($-prefixed or dotted) from
// query strings and JSON, urlencoded, and multipart bodies, and neutralizes
// angle brackets in every string input so script tags cannot survive into
// controllers.
func Sanitize() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sanitizeQuery(c)

			req := c.Request()
			contentType := req.Header.Get(echo.HeaderContentType)
			switch {
			case strings.HasPrefix(contentType, echo.MIMEApplicationJSON) && req.Body != nil:
				raw, err := io.ReadAll(req.Body)
				if err != nil {
					return err
				}
				_ = req.Body.Close()

				var payload any
				if err := json.Unmarshal(raw, &payload); err == nil {
					cleaned, err := json.Marshal(sanitizeValue(payload))
					if err == nil {
						raw = cleaned
					}
				}

				req.Body = io.NopCloser(bytes.NewReader(raw))
				req.ContentLength = int64(len(raw))
				req.Header.Set(echo.HeaderContentLength, strconv.Itoa(len(raw)))
			case strings.HasPrefix(contentType, echo.MIMEApplicationForm),
				strings.HasPrefix(contentType, echo.MIMEMultipartForm):
				sanitizeForm(req)
			}

			return next(c)
		}
	}
}

// sanitizeForm parses the form eagerly and cleans the parsed values in
// place; later FormValue and Bind calls read the already-parsed maps.
func sanitizeForm(req *http.Request) {
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := req.ParseMultipartForm(multipartMemoryLimit); err != nil {
			return
		}
	} else if err := req.ParseForm(); err != nil {
		return
	}

	sanitizeValues(req.Form)
	sanitizeValues(req.PostForm)
	if req.MultipartForm != nil {
		sanitizeValues(req.MultipartForm.Value)
	}
}

func sanitizeValues(values map[string][]string) {
	for key, vals := range values {
		if injectionKey(key) {
			delete(values, key)
			continue
		}
		for i, v := range vals {
			vals[i] = sanitizeString(v)
		}
	}
}

func sanitizeQuery(c echo.Context) {
	req := c.Request()
	values := req.URL.Query()

	cleaned := url.Values{}
	for key, vals := range values {
		if injectionKey(key) {
			continue
		}
		for _, v := range vals {
			cleaned.Add(key, sanitizeString(v))
		}
	}
	req.URL.RawQuery = cleaned.Encode()
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if injectionKey(k) {
				continue
			}
			out[k] = sanitizeValue(child)
		}
		return out
	case []any:
		for i, child := range val {
			val[i] = sanitizeValue(child)
		}
		return val
	case string:
		return sanitizeString(val)
	default:
		return v
	}
}

// injectionKey reports whether a key could address a query operator or a
// nested path in the document store.
func injectionKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

func sanitizeString(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
