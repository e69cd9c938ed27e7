package domain

import "errors"

var (
	// ErrInvalidInput is returned when request input cannot be used as given,
	// e.g. a feature vector of the wrong length
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingInput is returned when a filter request carries no category verdicts
	ErrMissingInput = errors.New("no ingredient groups provided")

	// ErrUnknownConcern is returned when a concern name is not one of the model's features
	ErrUnknownConcern = errors.New("unknown concern")

	// ErrClassifierFailure is returned when the classifier cannot produce a prediction
	ErrClassifierFailure = errors.New("classifier invocation failed")

	// ErrClassifierUnavailable is returned when the remote classifier circuit is open
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrInvalidModel is returned when a model artifact is malformed
	ErrInvalidModel = errors.New("invalid model artifact")

	// ErrInvalidCatalog is returned when the product catalog source is malformed
	ErrInvalidCatalog = errors.New("invalid product catalog")

	// ErrInvalidRegistry is returned when a category keyword table is malformed
	ErrInvalidRegistry = errors.New("invalid category registry")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
