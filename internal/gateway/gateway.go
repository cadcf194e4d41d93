package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/prosperfactory/paygate/internal/catalog"
	"github.com/prosperfactory/paygate/internal/verify"
)

// Decision classifies where a download request may be sent.
type Decision int

const (
	// DecisionResource grants access: redirect to the protected asset.
	DecisionResource Decision = iota
	// DecisionFallback denies access: redirect to a payment page. Bad
	// input, unpaid sessions, wrong products and provider outages all
	// land here so the response never leaks which one occurred.
	DecisionFallback
	// DecisionMisconfigured means a required credential is missing from
	// the deployment. The only branch that surfaces a server error.
	DecisionMisconfigured
)

// Redirect is the gateway's decision. Location is set for the two
// redirect decisions; Detail names the missing environment variable for
// the misconfigured one.
type Redirect struct {
	Decision Decision
	Location string
	Detail   string
}

// Gateway is the request-level authorization decision. It owns no
// mutable state and may be shared across requests.
type Gateway struct {
	registry      catalog.Registry
	verifier      *verify.Verifier
	driveTemplate string
}

func New(registry catalog.Registry, verifier *verify.Verifier, driveTemplate string) *Gateway {
	return &Gateway{
		registry:      registry,
		verifier:      verifier,
		driveTemplate: driveTemplate,
	}
}

// Authorize decides whether the request may receive the asset location
// for the given locale, and which fallback to use otherwise.
func (g *Gateway) Authorize(ctx context.Context, lang, sessionID string) Redirect {
	product, ok := g.registry.Lookup(lang)
	if !ok {
		return Redirect{Decision: DecisionFallback, Location: catalog.DefaultFallbackPath}
	}

	// A visitor without a completed checkout is the common case, not an
	// error: route to the locale's payment page, no provider call.
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || !strings.HasPrefix(sessionID, verify.SessionPrefix) {
		return Redirect{Decision: DecisionFallback, Location: product.FallbackPath}
	}

	if _, envVar, ok := g.verifier.KeyFor(sessionID); !ok {
		log.Error().Str("env_var", envVar).Msg("download.missing_credential")
		return Redirect{Decision: DecisionMisconfigured, Detail: envVar}
	}

	result := g.verifier.Verify(ctx, sessionID, product.ProductID)
	if result.Outcome == verify.OutcomeAuthorized {
		return Redirect{Decision: DecisionResource, Location: g.assetURL(product.DriveID)}
	}

	log.Debug().
		Str("lang", product.Locale).
		Str("outcome", result.Outcome.String()).
		Msg("download.fallback")
	return Redirect{Decision: DecisionFallback, Location: product.FallbackPath}
}

func (g *Gateway) assetURL(driveID string) string {
	return fmt.Sprintf(g.driveTemplate, url.QueryEscape(driveID))
}
