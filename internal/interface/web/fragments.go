package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/angelofallars/htmx-go"
	"github.com/gin-gonic/gin"
	"github.com/photonwallet/photon/internal/core/application"
)

func fragmentHandler(c *gin.Context, r []byte) {
	if !htmx.IsHTMX(c.Request) {
		// nolint:all
		c.AbortWithError(http.StatusBadRequest, errors.New("non-htmx request"))
		return
	}
	// nolint:all
	c.Writer.Write(r)
	// nolint:all
	htmx.NewResponse().Write(c.Writer)
}

func (h *handler) balanceFragment(c *gin.Context) {
	snapshot := h.appSvc.GetSnapshot()
	fragmentHandler(c, []byte(fmt.Sprintf(
		"<span class=\"balance\">%d sats</span>", snapshot.BalanceSats,
	)))
}

func (h *handler) sendFragment(c *gin.Context) {
	step := h.appSvc.Send().Step()
	var body string
	switch s := step.(type) {
	case application.StepInput:
		body = "<p>Enter a destination</p>"
	case application.StepAmount:
		body = "<p>Enter an amount</p>"
	case application.StepLnurl:
		body = fmt.Sprintf("<p>Enter an amount between %d and %d sats</p>", s.MinSats, s.MaxSats)
	case application.StepProcessing:
		body = "<p>Processing...</p>"
	case application.StepConfirm, application.StepLnurlConfirm:
		body = "<p>Confirm payment</p>"
	case application.StepResult:
		if s.Err != nil {
			body = fmt.Sprintf("<p>Payment Failed: %s</p>", s.Err)
		} else {
			body = "<p>Payment Successful!</p>"
		}
	}
	fragmentHandler(c, []byte(body))
}
