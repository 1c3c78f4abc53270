package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures across the identification pipeline. HTTP and
// CLI layers map tags to user-facing responses; untagged errors are treated
// as unexpected.
var (
	// TagInvalidInput marks a non-image file handed to the preprocessor
	TagInvalidInput = goerr.NewTag("invalid_input")

	// TagMissingInput marks a proxy request without an image payload
	TagMissingInput = goerr.NewTag("missing_input")

	// TagConfiguration marks a deployment fault such as a missing credential
	TagConfiguration = goerr.NewTag("configuration")

	// TagUpstreamTransport marks a failed call to the external model
	TagUpstreamTransport = goerr.NewTag("upstream_transport")

	// TagUpstreamShape marks a model response missing candidates or parts
	TagUpstreamShape = goerr.NewTag("upstream_shape")

	// TagTransport marks a failed client call to the proxy
	TagTransport = goerr.NewTag("transport")

	// TagUpstream marks an error payload returned by the proxy
	TagUpstream = goerr.NewTag("upstream")

	// TagOutOfRange marks a history selection outside the stored log
	TagOutOfRange = goerr.NewTag("out_of_range")
)
