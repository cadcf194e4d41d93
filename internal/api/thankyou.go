package api

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/prosperfactory/paygate/internal/catalog"
	"github.com/prosperfactory/paygate/internal/verify"
)

// thankYouLocale is the one locale this page is built for.
const thankYouLocale = "de"

// ThankYouHandler is the confirmation-page variant of the response
// renderer. It re-verifies the session itself and on success renders a
// page deep-linking to the redirect variant. Every failure, including a
// missing credential, is a generic 404 so an unauthenticated prober
// learns nothing about payment state.
type ThankYouHandler struct {
	verifier *verify.Verifier
	product  catalog.Product
}

func NewThankYouHandler(verifier *verify.Verifier, registry catalog.Registry) *ThankYouHandler {
	product, _ := registry.Lookup(thankYouLocale)
	return &ThankYouHandler{verifier: verifier, product: product}
}

// Page handles GET/HEAD /thankyou/de?session_id=..
func (h *ThankYouHandler) Page(c echo.Context) error {
	if ok, err := requireGetOrHead(c); !ok {
		return err
	}
	setProtectedHeaders(c)

	sessionID := strings.TrimSpace(c.QueryParam("session_id"))
	if sessionID == "" || !strings.HasPrefix(sessionID, verify.SessionPrefix) {
		return c.String(http.StatusNotFound, "Not Found")
	}

	if _, _, ok := h.verifier.KeyFor(sessionID); !ok {
		return c.String(http.StatusNotFound, "Not Found")
	}

	result := h.verifier.Verify(c.Request().Context(), sessionID, h.product.ProductID)
	if result.Outcome != verify.OutcomeAuthorized {
		return c.String(http.StatusNotFound, "Not Found")
	}

	downloadURL := "/download?lang=" + thankYouLocale + "&session_id=" + url.QueryEscape(sessionID)

	var page bytes.Buffer
	if err := thankYouTemplate.Execute(&page, thankYouData{
		Lang:        thankYouLocale,
		DownloadURL: downloadURL,
		HomePath:    "/de/",
	}); err != nil {
		log.Error().Err(err).Msg("thankyou.render_failed")
		return c.String(http.StatusNotFound, "Not Found")
	}
	return c.HTML(http.StatusOK, page.String())
}

type thankYouData struct {
	Lang        string
	DownloadURL string
	HomePath    string
}

var thankYouTemplate = template.Must(template.New("thankyou").Parse(`<!doctype html>
<html lang="{{.Lang}}">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Danke — Prosper Factory</title>
    <meta name="robots" content="noindex, nofollow" />
    <style>
      :root{color-scheme:dark;--bg:#070707;--panel:#111;--accent:#d4af37;--text:#f5f5f5;--muted:#b9b9b9}
      body{margin:0;font-family:system-ui,-apple-system,Segoe UI,Roboto,Arial,sans-serif;background:var(--bg);color:var(--text);display:flex;min-height:100vh;align-items:center;justify-content:center;padding:24px}
      main{max-width:720px;width:100%;background:linear-gradient(180deg,rgba(17,17,17,.9),rgba(8,8,8,.9));border:1px solid rgba(212,175,55,.25);border-radius:18px;padding:28px 24px;box-shadow:0 24px 70px rgba(0,0,0,.6)}
      h1{margin:0 0 8px;font-size:1.7rem}
      p{margin:0 0 14px;color:var(--muted);line-height:1.55}
      a.btn{display:inline-block;background:var(--accent);color:#1a1305;text-decoration:none;font-weight:700;padding:12px 16px;border-radius:999px}
      .fine{font-size:.92rem}
    </style>
  </head>
  <body>
    <main>
      <h1>Danke — Zahlung bestätigt</h1>
      <p>Dein Download ist bereit. Falls er nicht automatisch startet, nutze den Button unten.</p>
      <p><a class="btn" href="{{.DownloadURL}}" rel="nofollow">PDF herunterladen</a></p>
      <p class="fine">Tipp: Bewahre den Stripe-Bestätigungslink auf (er enthält das Session-Token).</p>
      <noscript><p class="fine">JavaScript ist deaktiviert. Der Button funktioniert trotzdem.</p></noscript>
      <script>setTimeout(function(){window.location.replace({{.DownloadURL}})}, 1200);</script>
      <p class="fine"><a href="{{.HomePath}}" rel="nofollow">Zur Startseite</a></p>
    </main>
  </body>
</html>`))
