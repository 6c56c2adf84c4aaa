package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/apierror"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// On failure it writes the error response and returns false; the caller must
// not write another one.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// responderError writes err with the status its kind maps to. 5xx errors are
// also logged.
func responderError(c *gin.Context, err error) {
	status := apierror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Err(err).
			Msg("request failed")
	}
	c.JSON(status, apierror.FromError(err))
}

// leerArchivo reads the multipart "file" field, capped at maxBytes.
func leerArchivo(c *gin.Context, maxBytes int64) (string, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Falta el archivo (campo 'file')"))
		return "", nil, false
	}
	if fh.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("El archivo supera el tamaño máximo permitido"))
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo abrir el archivo"))
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo leer el archivo"))
		return "", nil, false
	}
	return fh.Filename, data, true
}

// formBool reads a boolean form field, falling back to def when absent or invalid.
func formBool(c *gin.Context, name string, def bool) bool {
	v, ok := c.GetPostForm(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
