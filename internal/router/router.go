package router

import (
	"time"

	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/app"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/handler"
	"github.com/AlvaroHuertas/alternative-glop-to-holded/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New returns a Gin engine serving the wired app.
func New(a *app.App) *gin.Engine {
	if a.Cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = a.Cfg.UploadMaxBytes()

	// order matters
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(600, time.Minute))

	maxUpload := a.Cfg.UploadMaxBytes()
	holdedH := handler.NewHoldedHandler(a.HoldedSvc, a.Actualizacion, a.Ejecuciones, maxUpload)
	csvH := handler.NewCSVHandler(a.CSV, maxUpload)

	r.GET("/health", handler.Health(a.Holded, a.Redis))

	api := r.Group("/api")
	{
		api.POST("/upload-csv", csvH.Previsualizar)
		api.POST("/stock/validate", csvH.ValidarStock)
	}

	holded := api.Group("/holded")
	{
		holded.GET("/health", holdedH.Estado)
		holded.GET("/warehouses", holdedH.ListarAlmacenes)
		holded.GET("/stock-by-warehouse", holdedH.StockPorAlmacen)

		// runs hit Holded once per row
		stock := holded.Group("/stock", middleware.RateLimiter(30, time.Minute))
		{
			stock.PUT("/update", holdedH.ActualizarPorSKU)
			stock.POST("/update-from-gcs", holdedH.ActualizarDesdeGCS)
			stock.POST("/update-from-file", holdedH.ActualizarDesdeArchivo)
		}
		holded.GET("/stock/runs", holdedH.ListarEjecuciones)
	}

	return r
}
