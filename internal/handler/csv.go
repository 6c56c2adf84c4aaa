package handler

import (
	"net/http"
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/service"

	"github.com/gin-gonic/gin"
)

type CSVHandler struct {
	svc       service.CSVService
	maxUpload int64
}

func NewCSVHandler(svc service.CSVService, maxUpload int64) *CSVHandler {
	return &CSVHandler{svc: svc, maxUpload: maxUpload}
}

func (h *CSVHandler) Previsualizar(c *gin.Context) {
	nombre, data, ok := leerArchivo(c, h.maxUpload)
	if !ok {
		return
	}
	resp, err := h.svc.Previsualizar(nombre, data)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CSVHandler) ValidarStock(c *gin.Context) {
	nombre, data, ok := leerArchivo(c, h.maxUpload)
	if !ok {
		return
	}
	resp, err := h.svc.ValidarStock(c.Request.Context(), nombre, data, time.Now())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
