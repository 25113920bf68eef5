package oauth

import "errors"

var (
	// ErrInvalidSettings indicates settings that cannot start an exchange
	ErrInvalidSettings = errors.New("invalid oauth settings")
	// ErrNoSigner indicates an exchange was attempted without a signer
	ErrNoSigner = errors.New("oauth signer is required")
	// ErrUnsupportedMethod indicates a signer cannot produce the requested signature
	ErrUnsupportedMethod = errors.New("unsupported signature method")
)
