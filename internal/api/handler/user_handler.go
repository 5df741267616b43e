package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
)

// ImageProcessor resizes an uploaded photo and returns the stored filename.
type ImageProcessor interface {
	UserPhoto(data []byte, filename string) (string, error)
	TourImage(data []byte, filename string) (string, error)
}

// UserHandler exposes the self-service account endpoints plus admin CRUD
// through the embedded factory.
type UserHandler struct {
	*CRUD[domain.User]
	users  ports.UserRepository
	images ImageProcessor
}

func NewUserHandler(users ports.UserRepository, images ImageProcessor) *UserHandler {
	return &UserHandler{
		CRUD:   NewCRUD[domain.User](users, "user"),
		users:  users,
		images: images,
	}
}

// GetMe returns the authenticated user's own record.
func (h *UserHandler) GetMe(c echo.Context) error {
	return respondOne(c, http.StatusOK, "user", middleware.CurrentUser(c))
}

// UpdateMe updates the authenticated user's profile. Only name, email, and
// photo may change here; password data is rejected outright.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user := middleware.CurrentUser(c)

	updates := map[string]any{}
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		if name := c.FormValue("name"); name != "" {
			updates["name"] = name
		}
		if email := c.FormValue("email"); email != "" {
			updates["email"] = email
		}
		if v := c.FormValue("password"); v != "" {
			return domain.BadRequest("This route is not for password updates. Please use /updateMyPassword")
		}

		filename, err := h.savePhoto(c, user)
		if err != nil {
			return err
		}
		if filename != "" {
			updates["photo"] = filename
		}
	} else {
		body := map[string]any{}
		if err := c.Bind(&body); err != nil {
			return err
		}
		if _, ok := body["password"]; ok {
			return domain.BadRequest("This route is not for password updates. Please use /updateMyPassword")
		}
		if _, ok := body["passwordConfirm"]; ok {
			return domain.BadRequest("This route is not for password updates. Please use /updateMyPassword")
		}
		// Field whitelist: everything else (role, active, ...) is dropped.
		for _, field := range []string{"name", "email"} {
			if v, ok := body[field]; ok {
				updates[field] = v
			}
		}
	}

	updated, err := h.users.UpdateByID(c.Request().Context(), user.ID.Hex(), updates)
	if err != nil {
		return err
	}
	return respondOne(c, http.StatusOK, "user", updated)
}

// UpdateMeForm handles the rendered account form: same update as UpdateMe,
// then a redirect back to the account page.
func (h *UserHandler) UpdateMeForm(c echo.Context) error {
	user := middleware.CurrentUser(c)

	updates := map[string]any{}
	if name := c.FormValue("name"); name != "" {
		updates["name"] = name
	}
	if email := c.FormValue("email"); email != "" {
		updates["email"] = email
	}

	filename, err := h.savePhoto(c, user)
	if err != nil {
		return err
	}
	if filename != "" {
		updates["photo"] = filename
	}

	if _, err := h.users.UpdateByID(c.Request().Context(), user.ID.Hex(), updates); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/me")
}

// DeleteMe soft-deletes the account by clearing the active flag.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if err := h.users.Deactivate(c.Request().Context(), user.ID.Hex()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser always fails: accounts are created through /signup so the
// credential flow cannot be bypassed.
func (h *UserHandler) CreateUser(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"status":  "error",
		"message": "This route is not defined! Please use /signup instead",
	})
}

func (h *UserHandler) savePhoto(c echo.Context, user *domain.User) (string, error) {
	fh, err := c.FormFile("photo")
	if err != nil {
		return "", nil // no upload
	}

	if !strings.HasPrefix(fh.Header.Get(echo.HeaderContentType), "image") {
		return "", domain.BadRequest("Not an image! Please upload only images")
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("user-%s-%d.jpeg", user.ID.Hex(), time.Now().UnixMilli())
	return h.images.UserPhoto(data, filename)
}
