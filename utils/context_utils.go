package utils

import "golang.org/x/net/context"

// CheckContextDone reports, without blocking, whether the provided context has been cancelled or has expired.
func CheckContextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
