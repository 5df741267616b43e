package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func runHPP(t *testing.T, rawQuery string) url.Values {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tours?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := PreventParamPollution()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return c.Request().URL.Query()
}

func TestHPP_CollapsesDuplicatesToLast(t *testing.T) {
	q := runHPP(t, "sort=price&sort=-ratingsAverage")
	if got := q["sort"]; len(got) != 1 || got[0] != "-ratingsAverage" {
		t.Fatalf("expected last value only, got %v", got)
	}
}

func TestHPP_KeepsWhitelistedDuplicates(t *testing.T) {
	q := runHPP(t, "duration=5&duration=9&difficulty=easy&difficulty=medium")
	if got := q["duration"]; len(got) != 2 {
		t.Fatalf("whitelisted field collapsed: %v", got)
	}
	if got := q["difficulty"]; len(got) != 2 {
		t.Fatalf("whitelisted field collapsed: %v", got)
	}
}

func TestHPP_SingleValuesUntouched(t *testing.T) {
	q := runHPP(t, "page=2&limit=10")
	if q.Get("page") != "2" || q.Get("limit") != "10" {
		t.Fatalf("single values modified: %v", q)
	}
}
