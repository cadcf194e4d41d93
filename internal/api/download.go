package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/prosperfactory/paygate/internal/gateway"
)

// DownloadHandler is the redirect variant of the response renderer: it
// maps the gateway's decision to an HTTP redirect, or to a plain server
// error for the misconfiguration case.
type DownloadHandler struct {
	gateway *gateway.Gateway
}

// Redirect handles GET/HEAD /download?lang=..&session_id=..
func (h *DownloadHandler) Redirect(c echo.Context) error {
	if ok, err := requireGetOrHead(c); !ok {
		return err
	}
	setProtectedHeaders(c)

	lang := c.QueryParam("lang")
	sessionID := c.QueryParam("session_id")

	decision := h.gateway.Authorize(c.Request().Context(), lang, sessionID)
	switch decision.Decision {
	case gateway.DecisionResource, gateway.DecisionFallback:
		c.Response().Header().Set(echo.HeaderLocation, decision.Location)
		return c.String(http.StatusFound, "Redirecting…")
	case gateway.DecisionMisconfigured:
		return c.String(http.StatusInternalServerError,
			fmt.Sprintf("Server misconfiguration: missing %s environment variable.", decision.Detail))
	default:
		log.Error().Int("decision", int(decision.Decision)).Msg("download.unknown_decision")
		return c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}
