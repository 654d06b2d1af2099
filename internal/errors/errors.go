package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows the core packages to signal specific, recognizable
// outcomes without coupling them to presentation details like HTTP status codes.
// The API layer checks for them with `errors.Is()` and maps them to responses.

var (
	// ErrNotFound signifies that a requested resource (a chat, a message)
	// could not be located. Typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed a business rule: an
	// unknown message role, content that is empty after trimming, or a
	// malformed request body. Typically mapped to a 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrStreaming signifies a failure while talking to the remote inference
	// endpoint: a network error, a non-2xx status, or a broken response body.
	// The user sees it as "the reply failed"; the conversation itself stays
	// intact. Typically mapped to a 502 Bad Gateway.
	ErrStreaming = errors.New("streaming failed")

	// ErrBusy signifies that an assistant reply is already in flight and a
	// second one was requested. Typically mapped to a 409 Conflict.
	ErrBusy = errors.New("a reply is already streaming")

	// ErrUnsupported signifies that an uploaded file's format has no text
	// extractor. Typically mapped to a 415 Unsupported Media Type.
	ErrUnsupported = errors.New("unsupported file format")

	// ErrInternal signifies an unexpected server-side failure. Used to avoid
	// leaking implementation details to the client. Mapped to a 500.
	ErrInternal = errors.New("internal server error")
)
