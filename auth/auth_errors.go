package auth

import clienterrors "github.com/jrsteele09/lakehouse-client/internal/errors"

var (
	// ErrRenewalRejected means the refresh endpoint answered 401: the renewal
	// credential is gone and the session has been cleared.
	ErrRenewalRejected    = clienterrors.ErrRenewalRejected
	ErrInvalidCredentials = clienterrors.ErrInvalidCredentials
	ErrMalformedResponse  = clienterrors.ErrMalformedResponse
	ErrUnexpectedStatus   = clienterrors.ErrUnexpectedStatus
)
