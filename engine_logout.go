package tubeauth

import (
	"context"
	"fmt"
)

// Logout clears the account's credential record so no outstanding refresh
// token can rotate again. Idempotent: logging out an account with no
// record succeeds. Outstanding access tokens stay valid until they expire;
// only the refresh lineage is severed.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUnauthorized
	}

	if err := e.creds.Clear(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, userID, true, "", nil)

	return nil
}
