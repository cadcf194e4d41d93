package verify

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/prosperfactory/paygate/internal/stripe"
)

// SessionPrefix marks a Stripe checkout session reference.
const SessionPrefix = "cs_"

// testSessionPrefix marks a session created against the test environment.
const testSessionPrefix = "cs_test_"

// Environment variables supplying the two Stripe credentials.
const (
	LiveKeyEnvVar = "STRIPE_SECRET_KEY"
	TestKeyEnvVar = "STRIPE_SECRET_KEY_TEST"
)

// Outcome is the result of one verification attempt. Exactly one variant
// holds per attempt; it is the sole input to the redirect decision.
type Outcome int

const (
	OutcomeAuthorized Outcome = iota
	OutcomeUnpaid
	OutcomeProductMismatch
	OutcomeProviderError
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthorized:
		return "authorized"
	case OutcomeUnpaid:
		return "unpaid"
	case OutcomeProductMismatch:
		return "product_mismatch"
	case OutcomeProviderError:
		return "provider_error"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Result carries the outcome plus a human-readable detail for the
// provider-error case. Detail never contains credentials.
type Result struct {
	Outcome Outcome
	Detail  string
}

// Verifier checks a claimed checkout session against Stripe. It holds no
// per-request state; the same verifier value serves every request.
type Verifier struct {
	client  *stripe.Client
	liveKey string
	testKey string
}

func NewVerifier(client *stripe.Client, liveKey, testKey string) *Verifier {
	return &Verifier{client: client, liveKey: liveKey, testKey: testKey}
}

// KeyFor selects the credential matching the session's environment: a
// cs_test_ prefix marks the test environment, anything else is live.
// ok is false when the selected credential is not configured; envVar
// names the variable an operator must set in that case.
func (v *Verifier) KeyFor(sessionID string) (key, envVar string, ok bool) {
	if strings.HasPrefix(sessionID, testSessionPrefix) {
		return v.testKey, TestKeyEnvVar, v.testKey != ""
	}
	return v.liveKey, LiveKeyEnvVar, v.liveKey != ""
}

// Verify reduces a session reference and an expected product to a single
// outcome. Provider failures are absorbed into the outcome rather than
// returned as errors; callers map them to a fallback.
func (v *Verifier) Verify(ctx context.Context, sessionID, expectedProductID string) Result {
	if !strings.HasPrefix(sessionID, SessionPrefix) {
		return Result{Outcome: OutcomeMalformed}
	}

	// Credential presence is checked by the caller before verification
	// starts; a missing key here still fails closed.
	key, envVar, ok := v.KeyFor(sessionID)
	if !ok {
		return Result{Outcome: OutcomeProviderError, Detail: "credential " + envVar + " not configured"}
	}

	session, err := v.client.GetCheckoutSession(ctx, sessionID, key)
	if err != nil {
		log.Warn().Err(err).Msg("verify.session_fetch_failed")
		return Result{Outcome: OutcomeProviderError, Detail: err.Error()}
	}

	if session.PaymentStatus != "paid" {
		return Result{Outcome: OutcomeUnpaid}
	}
	// Stripe does not put a status field on every session record. An
	// absent field is non-blocking; a present value other than
	// "complete" blocks.
	if session.Status != "" && session.Status != "complete" {
		return Result{Outcome: OutcomeUnpaid}
	}

	items, err := v.client.ListLineItems(ctx, sessionID, key)
	if err != nil {
		log.Warn().Err(err).Msg("verify.line_items_fetch_failed")
		return Result{Outcome: OutcomeProviderError, Detail: err.Error()}
	}

	for _, item := range items.Data {
		if item.Price.Product.ID() == expectedProductID {
			return Result{Outcome: OutcomeAuthorized}
		}
	}
	return Result{Outcome: OutcomeProductMismatch}
}
