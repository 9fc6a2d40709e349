package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"supportdesk/internal/middleware"
	"supportdesk/internal/monitoring"
	"supportdesk/internal/storage"
	"supportdesk/internal/store"
)

const (
	DefaultMaxUploadBytes int64 = 5 << 20

	// room for the text fields and multipart framing on top of the photo
	formOverheadBytes int64 = 1 << 20
	multipartMemory   int64 = 8 << 20
)

type UserController struct {
	store     *store.Store
	photos    storage.PhotoStore
	maxUpload int64
	log       *slog.Logger
	now       func() time.Time
}

func NewUserController(st *store.Store, photos storage.PhotoStore, maxUpload int64, log *slog.Logger) *UserController {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &UserController{store: st, photos: photos, maxUpload: maxUpload, log: log, now: time.Now}
}

// GetUser returns the profile for ?email= without the password.
func (u *UserController) GetUser(c *gin.Context) {
	user, err := u.store.UserByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "User not found.")
			return
		}
		u.serverError(c, "fetch user failed", err, "Error fetching user data. Please try again.")
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

// UpdateUser stores the contact fields and an optional profile photo for
// the user owning the form's email.
func (u *UserController) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxUpload+formOverheadBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		monitoring.RecordProfileUpload(monitoring.ResultRejected)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Profile photo is too large.")
			return
		}
		c.String(http.StatusBadRequest, "Invalid profile photo upload.")
		return
	}

	email := c.PostForm("email")
	update := store.ProfileUpdate{
		Address:     formValue(c, "address"),
		Telephone:   formValue(c, "telephone"),
		HomeAddress: formValue(c, "homeAddress"),
	}

	header, err := c.FormFile("profilePhoto")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		monitoring.RecordProfileUpload(monitoring.ResultRejected)
		c.String(http.StatusBadRequest, "Invalid profile photo upload.")
		return
	}

	var photoPath string
	if header != nil {
		var status int
		var body string
		photoPath, status, body = u.savePhoto(c, header)
		if status != http.StatusOK {
			c.String(status, body)
			return
		}
		update.ProfilePhoto = &photoPath
	}

	if err := u.store.UpdateProfile(ctx, email, update); err != nil {
		if photoPath != "" {
			if rmErr := u.photos.Remove(ctx, photoPath); rmErr != nil {
				u.log.WarnContext(ctx, "could not remove orphaned photo", "path", photoPath, "error", rmErr)
			}
		}
		if errors.Is(err, store.ErrNotFound) {
			c.String(http.StatusNotFound, "User not found.")
			return
		}
		u.serverError(c, "update user failed", err, "Error updating user settings. Please try again.")
		return
	}

	c.String(http.StatusOK, "Settings updated successfully!")
}

// savePhoto validates and stores an uploaded photo. It returns the stored
// path, or a non-200 status with the response body to send.
func (u *UserController) savePhoto(c *gin.Context, header *multipart.FileHeader) (string, int, string) {
	if header.Size > u.maxUpload {
		monitoring.RecordProfileUpload(monitoring.ResultRejected)
		return "", http.StatusRequestEntityTooLarge, "Profile photo is too large."
	}

	f, err := header.Open()
	if err != nil {
		monitoring.RecordProfileUpload(monitoring.ResultFailed)
		u.log.ErrorContext(c.Request.Context(), "open upload failed", "error", err)
		return "", http.StatusInternalServerError, "Error updating user settings. Please try again."
	}
	defer f.Close()

	mime, err := mimetype.DetectReader(f)
	if err != nil || !strings.HasPrefix(mime.String(), "image/") {
		monitoring.RecordProfileUpload(monitoring.ResultRejected)
		return "", http.StatusBadRequest, "Profile photo must be an image."
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		monitoring.RecordProfileUpload(monitoring.ResultFailed)
		u.log.ErrorContext(c.Request.Context(), "rewind upload failed", "error", err)
		return "", http.StatusInternalServerError, "Error updating user settings. Please try again."
	}

	name := storage.FileName(u.now(), header.Filename)
	path, err := u.photos.Save(c.Request.Context(), name, f, mime.String())
	if err != nil {
		monitoring.RecordProfileUpload(monitoring.ResultFailed)
		u.log.ErrorContext(c.Request.Context(), "store photo failed", "error", err, "request_id", middleware.RequestIDFromContext(c))
		return "", http.StatusInternalServerError, "Error updating user settings. Please try again."
	}

	monitoring.RecordProfileUpload(monitoring.ResultOK)
	return path, http.StatusOK, ""
}

func (u *UserController) serverError(c *gin.Context, msg string, err error, body string) {
	u.log.ErrorContext(c.Request.Context(), msg, "error", err, "request_id", middleware.RequestIDFromContext(c))
	c.String(http.StatusInternalServerError, body)
}

// formValue returns nil when key is absent from the form.
func formValue(c *gin.Context, key string) *string {
	if v, ok := c.GetPostForm(key); ok {
		return &v
	}
	return nil
}
