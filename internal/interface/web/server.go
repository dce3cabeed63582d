package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/photonwallet/photon/internal/core/application"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	appSvc *application.Service
	server *http.Server
}

func NewService(port uint32, appSvc *application.Service) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware())

	h := newHandler(appSvc)

	api := router.Group("/api/v1")
	{
		api.GET("/info", h.buildInfo)

		session := api.Group("/session")
		session.GET("", h.sessionStatus)
		session.POST("/restore", h.restoreSession)
		session.POST("/connect", h.connectSession)
		session.POST("/disconnect", h.disconnectSession)
		session.POST("/logout", h.logout)
		session.POST("/network", h.switchNetwork)
		session.GET("/mnemonic", h.backupMnemonic)
		session.POST("/mnemonic", h.generateMnemonic)

		account := api.Group("/account")
		account.GET("", h.accountSnapshot)
		account.POST("/refresh", h.refreshAccount)
		account.GET("/notifications", h.notifications)

		settings := api.Group("/settings")
		settings.GET("", h.getSettings)
		settings.POST("", h.updateSettings)

		send := api.Group("/send")
		send.GET("", h.sendStep)
		send.POST("/input", h.sendInput)
		send.POST("/amount", h.sendAmount)
		send.POST("/lnurl", h.sendLnurlAmount)
		send.POST("/speed", h.sendSpeed)
		send.POST("/route", h.sendRoute)
		send.POST("/confirm", h.sendConfirm)
		send.POST("/reset", h.sendReset)

		receive := api.Group("/receive")
		receive.GET("/spark", h.receiveSpark)
		receive.GET("/bitcoin", h.receiveBitcoin)
		receive.POST("/invoice", h.receiveInvoice)
		receive.GET("/lnaddress", h.lightningAddress)
		receive.POST("/lnaddress", h.updateLightningAddress)
		receive.DELETE("/lnaddress", h.deleteLightningAddress)
		receive.POST("/reset", h.receiveReset)

		deposits := api.Group("/deposits")
		deposits.GET("", h.listDeposits)
		deposits.POST("/claim", h.claimDeposit)
		deposits.POST("/refund", h.refundDeposit)
	}

	router.GET("/qr", h.qrCode)

	fragments := router.Group("/fragments")
	fragments.GET("/balance", h.balanceFragment)
	fragments.GET("/send", h.sendFragment)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      router,
	}

	return &Service{appSvc: appSvc, server: server}
}

func (s *Service) Start() error {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("web server exited")
		}
	}()
	log.Infof("web interface listening on %s", s.server.Addr)
	return nil
}

func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:all
	s.server.Shutdown(ctx)
}
