package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/restaurant-tables/controllers"
	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/services"
)

type Options struct {
	CORSAllowedOrigins    []string
	RateLimitPerSecond    int
	MutationRatePerMinute int
}

func SetupRouter(screens *services.ScreenRegistry, recorder *services.ActivityRecorder, hub *live.Hub, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSAllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.NewRateLimiter(opts.RateLimitPerSecond, 1).RateLimit())

	mutations := middlewares.NewMutationRateLimiter(opts.MutationRatePerMinute)

	// Inisialisasi controller
	tableCtrl := controllers.NewTableController(screens)
	formCtrl := controllers.NewTableFormController(screens)
	activityCtrl := controllers.NewActivityController(recorder)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------------------------------------------
	//                      REGISTRATION FORM
	// ----------------------------------------------------------------
	forms := r.Group("/forms")
	{
		forms.POST("", formCtrl.MountForm)
		forms.GET("/:form_id", formCtrl.GetForm)
		forms.PATCH("/:form_id", formCtrl.UpdateField)
		forms.PUT("/:form_id/image", formCtrl.UploadImage)
		forms.DELETE("/:form_id/image", formCtrl.RemoveImage)
		forms.POST("/:form_id/submit", mutations, formCtrl.Submit)
		forms.DELETE("/:form_id/notification", formCtrl.DismissNotification)
		forms.DELETE("/:form_id", formCtrl.UnmountForm)
	}

	// ----------------------------------------------------------------
	//                      TABLE BROWSER
	// ----------------------------------------------------------------
	browsers := r.Group("/browsers")
	{
		browsers.POST("", tableCtrl.MountBrowser)
		browsers.GET("/:browser_id", tableCtrl.GetBrowser)
		browsers.GET("/:browser_id/tables", tableCtrl.GetVisibleTables)
		browsers.PUT("/:browser_id/floor", tableCtrl.SelectFloor)
		browsers.GET("/:browser_id/selection", tableCtrl.GetSelection)
		browsers.PUT("/:browser_id/selection", tableCtrl.SelectTable)
		browsers.DELETE("/:browser_id/selection", mutations, tableCtrl.DeleteSelectedTable)
		browsers.DELETE("/:browser_id/tables/:table_id", mutations, tableCtrl.DeleteTable)
		browsers.DELETE("/:browser_id/notification", tableCtrl.DismissNotification)
		browsers.DELETE("/:browser_id", tableCtrl.UnmountBrowser)
	}

	r.GET("/activity", activityCtrl.GetRecentActivity)
	r.GET("/ws", controllers.LiveHandler(hub))

	return r
}
