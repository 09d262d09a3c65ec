package custody

import (
	"github.com/x-xyz/marketengine/domain"
	"golang.org/x/xerrors"
)

// Failed wraps a gateway error so callers can match domain.ErrCustodyFailed
// while the message keeps the failing step and the gateway's reason.
func Failed(step string, err error) error {
	return xerrors.Errorf("%s: %v: %w", step, err, domain.ErrCustodyFailed)
}
