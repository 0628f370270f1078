package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/yukikurage/project-hub-api/internal/constants"
	apierrors "github.com/yukikurage/project-hub-api/internal/errors"
	"github.com/yukikurage/project-hub-api/internal/services"
)

// Multipart field names.
const (
	fieldData         = "data"
	fieldRelatedDocs  = "related_docs"
	fieldMedia        = "media"
	fieldResultImages = "result_images"
	fieldAttachments  = "attachments"
	fieldImage        = "image"
	fieldLogo         = "logo"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
}

// bindRequest binds a JSON body, or the JSON document carried in the "data"
// field of a multipart form. It responds 400 on failure.
func bindRequest(c *gin.Context, req interface{}) bool {
	var err error
	if isMultipart(c) {
		data := c.PostForm(fieldData)
		if data == "" {
			data = "{}"
		}
		if err = json.Unmarshal([]byte(data), req); err == nil {
			err = binding.Validator.ValidateStruct(req)
		}
	} else {
		err = c.ShouldBindJSON(req)
	}
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// formFiles opens the files uploaded under field. The returned func closes
// them and must be called once the uploads were consumed.
func formFiles(c *gin.Context, field string) ([]services.Upload, func(), bool) {
	noop := func() {}
	if !isMultipart(c) {
		return nil, noop, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		apierrors.BadRequest(c, "Invalid multipart form")
		return nil, noop, false
	}

	headers := form.File[field]
	if len(headers) > constants.MaxUploadFiles {
		apierrors.BadRequest(c, services.ErrTooManyFiles.Error())
		return nil, noop, false
	}

	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, h := range headers {
		if h.Size > constants.MaxUploadSize {
			closeAll()
			apierrors.BadRequest(c, fmt.Sprintf("File %s exceeds %d bytes", h.Filename, constants.MaxUploadSize))
			return nil, noop, false
		}
		f, err := h.Open()
		if err != nil {
			closeAll()
			apierrors.BadRequest(c, "Failed to read uploaded file")
			return nil, noop, false
		}
		opened = append(opened, f)
		uploads = append(uploads, services.Upload{Filename: h.Filename, Content: f})
	}
	return uploads, closeAll, true
}

// formFile opens at most one file uploaded under field.
func formFile(c *gin.Context, field string) (*services.Upload, func(), bool) {
	uploads, closeAll, ok := formFiles(c, field)
	if !ok || len(uploads) == 0 {
		return nil, closeAll, ok
	}
	return &uploads[0], closeAll, true
}
