package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// maxImageUpload batasi ukuran upload ke 10MB
const maxImageUpload = 10 << 20

type TableFormController struct {
	Screens *services.ScreenRegistry
}

func NewTableFormController(screens *services.ScreenRegistry) *TableFormController {
	return &TableFormController{Screens: screens}
}

// MountForm -> membuat form registrasi meja dan memuat daftar zona
func (fc *TableFormController) MountForm(c *gin.Context) {
	form := fc.Screens.MountForm(c.Request.Context())

	utils.InfoLogger.Printf("Table form mounted: %s", form.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table form mounted", form.Snapshot())
}

// GetForm
func (fc *TableFormController) GetForm(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table form", form.Snapshot())
}

// UpdateField -> ubah satu field teks
func (fc *TableFormController) UpdateField(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}

	var body struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := form.UpdateField(body.Field, body.Value); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Field updated", form.Snapshot())
}

// UploadImage -> hanya file pertama yang disimpan
func (fc *TableFormController) UploadImage(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUpload)
	mf, err := c.MultipartForm()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("error processing form"))
		return
	}

	headers := mf.File[models.FieldImage]
	files := make([]*models.ImageFile, 0, len(headers))
	for _, fh := range headers {
		img, err := readImage(fh)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		files = append(files, img)
	}

	form.SetImage(files)
	utils.RespondJSON(c, http.StatusOK, "Image updated", form.Snapshot())
}

// RemoveImage
func (fc *TableFormController) RemoveImage(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}
	form.SetImage(nil)
	utils.RespondJSON(c, http.StatusOK, "Image removed", form.Snapshot())
}

// Submit -> kirim form ke API meja
func (fc *TableFormController) Submit(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}

	if err := form.Submit(c.Request.Context()); err != nil {
		utils.RespondErrorData(c, statusFor(err), err, form.Snapshot())
		return
	}
	utils.RespondJSON(c, http.StatusCreated, services.MsgTableCreated, form.Snapshot())
}

// DismissNotification -> tutup snackbar
func (fc *TableFormController) DismissNotification(c *gin.Context) {
	form, ok := fc.form(c)
	if !ok {
		return
	}
	form.DismissNotification()
	utils.RespondJSON(c, http.StatusOK, "Notification dismissed", form.Snapshot())
}

// UnmountForm
func (fc *TableFormController) UnmountForm(c *gin.Context) {
	id := c.Param("form_id")
	if err := fc.Screens.UnmountForm(id); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}
	utils.InfoLogger.Printf("Table form unmounted: %s", id)
	utils.RespondJSON(c, http.StatusOK, "Table form unmounted", gin.H{"id": id})
}

func (fc *TableFormController) form(c *gin.Context) (*services.RegistrationForm, bool) {
	form, err := fc.Screens.Form(c.Param("form_id"))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return nil, false
	}
	return form, true
}

func readImage(fh *multipart.FileHeader) (*models.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", fh.Filename, contentType)
	}

	return &models.ImageFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
