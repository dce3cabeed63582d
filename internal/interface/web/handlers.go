package web

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photonwallet/photon/internal/core/application"
	"github.com/photonwallet/photon/internal/core/domain"
	"github.com/photonwallet/photon/utils"
	qrcode "github.com/skip2/go-qrcode"
)

type handler struct {
	appSvc *application.Service
}

func newHandler(appSvc *application.Service) *handler {
	return &handler{appSvc}
}

func (h *handler) buildInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": h.appSvc.BuildInfo.Version,
		"commit":  h.appSvc.BuildInfo.Commit,
		"date":    h.appSvc.BuildInfo.Date,
	})
}

func (h *handler) sessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      h.appSvc.Status(),
		"restoring":   h.appSvc.IsRestoring(),
		"fingerprint": h.appSvc.Fingerprint(),
	})
}

func (h *handler) restoreSession(c *gin.Context) {
	restored, err := h.appSvc.Restore(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": restored, "status": h.appSvc.Status()})
}

func (h *handler) connectSession(c *gin.Context) {
	var req struct {
		Mnemonic string `json:"mnemonic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if network := domain.Network(c.Query("network")); network != "" {
		if network != domain.NetworkMainnet && network != domain.NetworkRegtest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown network"})
			return
		}
		if err := h.appSvc.SwitchNetwork(c.Request.Context(), network); err != nil {
			abortWithError(c, err)
			return
		}
	}
	if err := h.appSvc.Connect(c.Request.Context(), req.Mnemonic); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.appSvc.Status()})
}

func (h *handler) disconnectSession(c *gin.Context) {
	if err := h.appSvc.Disconnect(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.appSvc.Status()})
}

func (h *handler) logout(c *gin.Context) {
	if err := h.appSvc.Logout(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": h.appSvc.Status()})
}

func (h *handler) switchNetwork(c *gin.Context) {
	var req struct {
		Network string `json:"network" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	network := domain.Network(req.Network)
	if network != domain.NetworkMainnet && network != domain.NetworkRegtest {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown network"})
		return
	}
	if err := h.appSvc.SwitchNetwork(c.Request.Context(), network); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"network": network, "status": h.appSvc.Status()})
}

func (h *handler) backupMnemonic(c *gin.Context) {
	mnemonic, err := h.appSvc.BackupMnemonic(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mnemonic": mnemonic})
}

func (h *handler) generateMnemonic(c *gin.Context) {
	mnemonic, err := h.appSvc.GenerateMnemonic()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mnemonic": mnemonic})
}

func (h *handler) accountSnapshot(c *gin.Context) {
	snapshot := h.appSvc.GetSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"balanceSats": snapshot.BalanceSats,
		"payments":    paymentsToJSON(snapshot.Payments),
		"updatedAt":   snapshot.UpdatedAt,
	})
}

func (h *handler) refreshAccount(c *gin.Context) {
	if err := h.appSvc.Refresh(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	h.accountSnapshot(c)
}

func (h *handler) notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.appSvc.Notifications()})
}

func (h *handler) getSettings(c *gin.Context) {
	settings, err := h.appSvc.GetSettings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsToJSON(*settings))
}

func (h *handler) updateSettings(c *gin.Context) {
	var req struct {
		Network                  *string `json:"network"`
		DepositMaxFeeSats        *uint64 `json:"depositMaxFeeSats"`
		SyncIntervalSecs         *uint32 `json:"syncIntervalSecs"`
		LnurlDomain              *string `json:"lnurlDomain"`
		PreferSparkOverLightning *bool   `json:"preferSparkOverLightning"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	settings, err := h.appSvc.GetSettings(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	updated := *settings
	if req.Network != nil {
		updated.Network = domain.Network(*req.Network)
	}
	if req.DepositMaxFeeSats != nil {
		updated.DepositMaxFee = domain.FixedFee{AmountSats: *req.DepositMaxFeeSats}
	}
	if req.SyncIntervalSecs != nil {
		updated.SyncIntervalSecs = *req.SyncIntervalSecs
	}
	if req.LnurlDomain != nil {
		updated.LnurlDomain = *req.LnurlDomain
	}
	if req.PreferSparkOverLightning != nil {
		updated.PreferSparkOverLightning = *req.PreferSparkOverLightning
	}

	if err := h.appSvc.UpdateSettings(ctx, updated); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settingsToJSON(updated))
}

func (h *handler) sendStep(c *gin.Context) {
	c.JSON(http.StatusOK, sendStepToJSON(h.appSvc.Send().Step()))
}

func (h *handler) sendInput(c *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	step, err := h.appSvc.Send().SubmitInput(c.Request.Context(), req.Input)
	respondStep(c, step, err)
}

func (h *handler) sendAmount(c *gin.Context) {
	var req struct {
		AmountSats uint64 `json:"amountSats" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	step, err := h.appSvc.Send().SubmitAmount(c.Request.Context(), req.AmountSats)
	respondStep(c, step, err)
}

func (h *handler) sendLnurlAmount(c *gin.Context) {
	var req struct {
		AmountSats uint64 `json:"amountSats" binding:"required"`
		Comment    string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	step, err := h.appSvc.Send().SubmitLnurlAmount(c.Request.Context(), req.AmountSats, req.Comment)
	respondStep(c, step, err)
}

func (h *handler) sendSpeed(c *gin.Context) {
	var req struct {
		Speed string `json:"speed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	step, err := h.appSvc.Send().SelectSpeed(domain.ConfirmationSpeed(req.Speed))
	respondStep(c, step, err)
}

func (h *handler) sendRoute(c *gin.Context) {
	var req struct {
		UseSpark bool `json:"useSpark"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	step, err := h.appSvc.Send().SetUseSpark(req.UseSpark)
	respondStep(c, step, err)
}

func (h *handler) sendConfirm(c *gin.Context) {
	step, err := h.appSvc.Send().Confirm(c.Request.Context())
	respondStep(c, step, err)
}

func (h *handler) sendReset(c *gin.Context) {
	h.appSvc.Send().Reset()
	h.refreshInBackground()
	c.JSON(http.StatusOK, sendStepToJSON(h.appSvc.Send().Step()))
}

func (h *handler) receiveReset(c *gin.Context) {
	h.appSvc.Receive().Reset()
	h.refreshInBackground()
	c.Status(http.StatusOK)
}

// refreshInBackground reloads the account snapshot after a dialog closes,
// without holding up the response.
func (h *handler) refreshInBackground() {
	go func() {
		// nolint:all
		h.appSvc.Refresh(context.Background())
	}()
}

func (h *handler) receiveSpark(c *gin.Context) {
	address, err := h.appSvc.Receive().SparkAddress(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

func (h *handler) receiveBitcoin(c *gin.Context) {
	address, err := h.appSvc.Receive().BitcoinAddress(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

func (h *handler) receiveInvoice(c *gin.Context) {
	var req struct {
		AmountSats  uint64 `json:"amountSats"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := h.appSvc.Receive().CreateInvoice(c.Request.Context(), req.AmountSats, req.Description)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := gin.H{"invoice": invoice}
	if _, hash, err := utils.DecodeInvoice(invoice); err == nil {
		resp["paymentHash"] = hex.EncodeToString(hash)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) lightningAddress(c *gin.Context) {
	info, err := h.appSvc.Receive().LightningAddress(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":     info.Address,
		"username":    info.Username,
		"description": info.Description,
	})
}

func (h *handler) updateLightningAddress(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	info, err := h.appSvc.Receive().UpdateLightningAddress(
		c.Request.Context(), req.Username, req.Description,
	)
	if err != nil {
		if errors.Is(err, domain.ErrAddressUnavailable) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":     info.Address,
		"username":    info.Username,
		"description": info.Description,
	})
}

func (h *handler) deleteLightningAddress(c *gin.Context) {
	if err := h.appSvc.Receive().DeleteLightningAddress(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listDeposits(c *gin.Context) {
	deposits, err := h.appSvc.Deposits().List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	out := make([]gin.H, 0, len(deposits))
	for _, d := range deposits {
		entry := gin.H{
			"txid":       d.Txid,
			"vout":       d.Vout,
			"amountSats": d.AmountSats,
			"inFlight":   h.appSvc.Deposits().InFlight(d.Txid, d.Vout),
		}
		if d.RefundTxid != "" {
			entry["refundTxid"] = d.RefundTxid
		}
		if d.ClaimError != nil {
			entry["claimError"] = gin.H{
				"kind":    d.ClaimError.Kind,
				"message": d.ClaimError.Message,
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"deposits": out})
}

func (h *handler) claimDeposit(c *gin.Context) {
	var req struct {
		Txid string `json:"txid" binding:"required"`
		Vout uint32 `json:"vout"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.appSvc.Deposits().Claim(c.Request.Context(), req.Txid, req.Vout); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": true})
}

func (h *handler) refundDeposit(c *gin.Context) {
	var req struct {
		Txid        string `json:"txid" binding:"required"`
		Vout        uint32 `json:"vout"`
		Destination string `json:"destination" binding:"required"`
		SatPerVbyte uint64 `json:"satPerVbyte"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var refundFee domain.Fee = domain.NetworkRecommendedFee{}
	if req.SatPerVbyte > 0 {
		refundFee = domain.RateFee{SatPerVbyte: req.SatPerVbyte}
	}
	txid, err := h.appSvc.Deposits().Refund(
		c.Request.Context(), req.Txid, req.Vout, req.Destination, refundFee,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refundTxid": txid})
}

func (h *handler) qrCode(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing data"})
		return
	}
	png, err := qrcode.Encode(data, qrcode.Medium, 256)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func abortWithError(c *gin.Context, err error) {
	// nolint:all
	c.Error(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, application.ErrEngineNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, application.ErrInvalidDestination):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
