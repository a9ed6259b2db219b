package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handler "educoin-engine/services/auction/handler"
)

// SetupRouter configures all Gin routes for the engine
func SetupRouter(auctionSvc handler.AuctionServiceInterface, walletSvc handler.WalletServiceInterface) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)

	api := router.Group("/api", IdentityMiddleware)

	auctions := api.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.POST("", RequireTeacher, auctionHandler.CreateAuctionHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
		auctions.POST("/:auction_id/close", RequireTeacher, auctionHandler.CloseAuctionHandler)
	}

	coins := api.Group("/coins")
	{
		coins.GET("/wallets/mine", walletHandler.MyWalletHandler)
		coins.GET("/wallets/:student_id/transactions", walletHandler.HistoryHandler)
		coins.GET("/wallets/:student_id/reconcile", RequireTeacher, walletHandler.ReconcileHandler)
		coins.POST("/wallets/:student_id/grant", RequireTeacher, walletHandler.GrantCoinsHandler)
		coins.POST("/periods/rollover", RequireTeacher, walletHandler.RolloverHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router
}
