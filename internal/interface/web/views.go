package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photonwallet/photon/internal/core/application"
	"github.com/photonwallet/photon/internal/core/domain"
)

func respondStep(c *gin.Context, step application.SendStep, err error) {
	if err != nil {
		// nolint:all
		c.Error(err)
		status := http.StatusBadRequest
		var execErr *application.ExecutionError
		if errors.As(err, &execErr) {
			status = http.StatusBadGateway
		}
		if errors.Is(err, application.ErrEngineNotInitialized) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error(), "step": sendStepToJSON(step)})
		return
	}
	c.JSON(http.StatusOK, sendStepToJSON(step))
}

func sendStepToJSON(step application.SendStep) gin.H {
	switch s := step.(type) {
	case application.StepInput:
		return gin.H{"step": "input"}
	case application.StepAmount:
		return gin.H{"step": "amount", "input": s.Input}
	case application.StepLnurl:
		return gin.H{
			"step":           "lnurl",
			"minSats":        s.MinSats,
			"maxSats":        s.MaxSats,
			"commentAllowed": s.CommentAllowed,
			"domain":         s.Pay.Domain,
		}
	case application.StepProcessing:
		return gin.H{"step": "processing"}
	case application.StepConfirm:
		out := gin.H{
			"step":       "confirm",
			"amountSats": s.Prepared.AmountSats,
			"canConfirm": s.CanConfirm(),
		}
		if fee, ok := s.FeeSats(); ok {
			out["feeSats"] = fee
		}
		switch m := s.Prepared.Method.(type) {
		case domain.BitcoinSendMethod:
			out["method"] = "bitcoin"
			out["address"] = m.Address.Address
			if s.Speed != nil {
				out["speed"] = *s.Speed
			}
			out["tiers"] = gin.H{
				"fast":   m.FeeQuote.Fast.Total(),
				"medium": m.FeeQuote.Medium.Total(),
				"slow":   m.FeeQuote.Slow.Total(),
			}
		case domain.Bolt11SendMethod:
			out["method"] = "bolt11"
			out["invoice"] = m.Invoice.Invoice
			out["useSpark"] = s.UseSpark
			out["sparkAvailable"] = m.SparkTransferFeeSats != nil
		case domain.SparkSendMethod:
			out["method"] = "spark"
			out["address"] = m.Address
		}
		return out
	case application.StepLnurlConfirm:
		return gin.H{
			"step":       "lnurlConfirm",
			"amountSats": s.Prepared.AmountSats,
			"feeSats":    s.Prepared.FeeSats,
			"comment":    s.Prepared.Comment,
			"domain":     s.Prepared.PayRequest.Domain,
		}
	case application.StepResult:
		out := gin.H{"step": "result", "success": s.Err == nil}
		if s.Err != nil {
			out["error"] = s.Err.Error()
		}
		if s.Payment != nil {
			out["payment"] = paymentToJSON(*s.Payment)
		}
		if s.SuccessAction != nil {
			out["successAction"] = gin.H{
				"kind":        s.SuccessAction.Kind,
				"message":     s.SuccessAction.Message,
				"description": s.SuccessAction.Description,
				"url":         s.SuccessAction.URL,
			}
		}
		return out
	}
	return gin.H{"step": "unknown"}
}

func paymentToJSON(p domain.Payment) gin.H {
	out := gin.H{
		"id":         p.ID,
		"type":       p.Type,
		"status":     p.Status,
		"amountSats": p.AmountSats,
		"feeSats":    p.FeeSats,
		"timestamp":  p.Timestamp,
		"method":     p.Method,
	}
	switch details := p.Details.(type) {
	case domain.LightningPaymentDetails:
		out["description"] = details.Description
		out["invoice"] = details.Invoice
		out["paymentHash"] = details.PaymentHash
	case domain.DepositPaymentDetails:
		out["txid"] = details.Txid
	case domain.WithdrawPaymentDetails:
		out["txid"] = details.Txid
	}
	return out
}

func paymentsToJSON(payments []domain.Payment) []gin.H {
	out := make([]gin.H, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentToJSON(p))
	}
	return out
}

func settingsToJSON(s domain.Settings) gin.H {
	out := gin.H{
		"network":                  s.Network,
		"syncIntervalSecs":         s.SyncIntervalSecs,
		"lnurlDomain":              s.LnurlDomain,
		"preferSparkOverLightning": s.PreferSparkOverLightning,
	}
	switch fee := s.DepositMaxFee.(type) {
	case domain.FixedFee:
		out["depositMaxFee"] = gin.H{"type": "fixed", "amountSats": fee.AmountSats}
	case domain.RateFee:
		out["depositMaxFee"] = gin.H{"type": "rate", "satPerVbyte": fee.SatPerVbyte}
	case domain.NetworkRecommendedFee:
		out["depositMaxFee"] = gin.H{"type": "networkRecommended", "leewaySatPerVbyte": fee.LeewaySatPerVbyte}
	}
	return out
}
