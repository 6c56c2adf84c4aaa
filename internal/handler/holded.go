package handler

import (
	"net/http"
	"strconv"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/dto"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/repository"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type HoldedHandler struct {
	svc         service.HoldedService
	act         service.ActualizacionService
	ejecuciones repository.EjecucionRepository
	maxUpload   int64
}

func NewHoldedHandler(svc service.HoldedService, act service.ActualizacionService, ejecuciones repository.EjecucionRepository, maxUpload int64) *HoldedHandler {
	return &HoldedHandler{svc: svc, act: act, ejecuciones: ejecuciones, maxUpload: maxUpload}
}

func (h *HoldedHandler) Estado(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Estado(c.Request.Context()))
}

func (h *HoldedHandler) ListarAlmacenes(c *gin.Context) {
	resp, err := h.svc.ListarAlmacenes(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockPorAlmacen returns the report as JSON, or as a spreadsheet with ?format=xlsx.
func (h *HoldedHandler) StockPorAlmacen(c *gin.Context) {
	informe, err := h.svc.StockPorAlmacen(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	if c.Query("format") != "xlsx" {
		c.JSON(http.StatusOK, informe)
		return
	}
	data, err := service.ExportarInformeXLSX(informe)
	if err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="stock_por_almacen.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *HoldedHandler) ActualizarPorSKU(c *gin.Context) {
	var req dto.ActualizarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPorSKU(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HoldedHandler) ActualizarDesdeGCS(c *gin.Context) {
	var req dto.ActualizarDesdeGCSRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.act.ActualizarDesdeGCS(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarDesdeArchivo runs the pipeline over an uploaded CSV. dry_run
// defaults to true.
func (h *HoldedHandler) ActualizarDesdeArchivo(c *gin.Context) {
	nombre, data, ok := leerArchivo(c, h.maxUpload)
	if !ok {
		return
	}
	resp, err := h.act.ActualizarDesdeArchivo(c.Request.Context(), nombre, data, formBool(c, "dry_run", true))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HoldedHandler) ListarEjecuciones(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.ejecuciones.ListarRecientes(c.Request.Context(), limit)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.EjecucionesResponse{Count: len(runs), Runs: runs})
}
