package match

import "context"

// Client is the sole point of contact with the match service. Each call is
// a single round trip; retries are left to the caller.
type Client interface {
	// FetchMatch retrieves a fresh match configuration. It fails with an
	// apperr.ErrTransport error on network or decoding failure and with
	// apperr.ErrConfig when the payload is incomplete.
	FetchMatch(ctx context.Context) (Config, error)
	// ReportWinner records the winner of a match. An Ack is returned only
	// when the service confirms the result; a refusal is apperr.ErrRejected.
	ReportWinner(ctx context.Context, matchID, playerID ID) (Ack, error)
}
