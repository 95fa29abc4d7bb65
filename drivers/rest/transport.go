// Package rest implements the REST driver family (cisco-nxos-api,
// arista-eapi, meraki-cloud) described in SPEC_FULL.md §4.A, grounded on
// original_source/crates/nauto_drivers/src/drivers/cisco_nxos_api.rs and
// meraki_cloud.rs.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/lammesen/netrust/internal/nconf"
)

// newClient builds a retryablehttp client whose retry policy matches spec
// §4.A: retry only transport-layer errors, never HTTP-status or envelope
// parse errors; linear backoff of 200ms * (attempt+1), capped at
// NAUTO_HTTP_RETRIES (default 2).
func newClient(log hclog.Logger) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   time.Duration(nconf.HTTPTimeoutSecs()) * time.Second,
	}
	c.RetryMax = nconf.HTTPRetries()
	c.Logger = nil
	if log != nil {
		c.Logger = hclogAdapter{log.Named("rest")}
	}
	c.CheckRetry = transportOnlyRetry
	c.Backoff = linearBackoff
	return c
}

// transportOnlyRetry never retries on a non-nil *http.Response (an HTTP
// status was obtained, terminal per spec); it retries on transport-layer
// errors (connection refused, dial timeout, etc) and context cancellation
// is never retried.
func transportOnlyRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return false, nil
}

// linearBackoff implements 200ms * (attempt+1), ignoring min/max bounds
// retryablehttp would otherwise apply (those are tuned for generic HTTP
// services, not our driver's documented contract).
func linearBackoff(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
	return 200 * time.Millisecond * time.Duration(attempt+1)
}

type hclogAdapter struct{ log hclog.Logger }

func (h hclogAdapter) Printf(format string, args ...interface{}) {
	h.log.Debug("retryablehttp", "msg", fmt.Sprintf(format, args...))
}
