package contexthelper

import "context"

// CheckCancellation returns the context's error if it has already been
// cancelled, nil otherwise. Storage calls use it to bail out before touching
// the network.
func CheckCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
