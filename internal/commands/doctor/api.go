package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/crm"
)

// LeadLister is the API call used to check the server.
type LeadLister interface {
	List(ctx context.Context) ([]lead.Lead, error)
}

// APICheck lists leads with the stored token to confirm the server is
// reachable and accepts it.
type APICheck struct {
	baseURL string
	tokens  TokenSource
	leads   LeadLister
}

// NewAPICheck creates a new API check.
func NewAPICheck(baseURL string, tokens TokenSource, leads LeadLister) *APICheck {
	return &APICheck{baseURL: baseURL, tokens: tokens, leads: leads}
}

func (c *APICheck) Name() string {
	return "API"
}

func (c *APICheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	result.add("Base URL", StatusPass, c.baseURL)

	if _, ok := c.tokens.CurrentToken(); !ok {
		result.add("Leads", StatusWarn, "skipped, not logged in")
		return result
	}

	leads, err := c.leads.List(ctx)
	var reqErr *crm.RequestError
	switch {
	case err == nil:
		result.add("Leads", StatusPass, fmt.Sprintf("%d lead(s)", len(leads)))
	case errors.Is(err, session.ErrUnauthenticated):
		result.add("Leads", StatusFail, "token rejected, run 'leadr login'")
	case errors.As(err, &reqErr) && reqErr.Status == 0:
		result.add("Leads", StatusFail, fmt.Sprintf("unreachable: %v", reqErr.Err))
	default:
		result.add("Leads", StatusFail, crm.Message(err))
	}

	return result
}
