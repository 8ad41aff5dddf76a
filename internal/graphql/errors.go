package graphql

import (
	"errors"
	"fmt"
	"strings"
)

const (
	transportNotConfiguredMessageConstant = "graphql transport not configured"
	endpointRequiredMessageConstant       = "graphql endpoint required"
	fatalResponseTemplateConstant         = "graphql response carried no data: %s"
	fatalResponseWithoutErrorsConstant    = "graphql response carried no data"
	fatalMessageSeparatorConstant         = "; "
	statusErrorTemplateConstant           = "graphql endpoint returned status %d"
	statusErrorWithBodyTemplateConstant   = "graphql endpoint returned status %d: %s"
	operationErrorTemplateConstant        = "%s operation failed: %v"
	responseDecodingErrorTemplateConstant = "graphql response decoding failed: %v"
)

// OperationName identifies the batch round trip that failed.
type OperationName string

// Batch operations.
const (
	OperationLookup   OperationName = OperationName("lookup")
	OperationMutation OperationName = OperationName("mutation")
)

var (
	// ErrTransportNotConfigured indicates a Batcher was constructed without a transport.
	ErrTransportNotConfigured = errors.New(transportNotConfiguredMessageConstant)
)

// TransportFatalError reports a response that carried errors but no data.
type TransportFatalError struct {
	Messages []string
}

// Error joins the reported messages.
func (fatalError TransportFatalError) Error() string {
	if len(fatalError.Messages) == 0 {
		return fatalResponseWithoutErrorsConstant
	}
	return fmt.Sprintf(fatalResponseTemplateConstant, strings.Join(fatalError.Messages, fatalMessageSeparatorConstant))
}

// TransportStatusError reports a non-2xx HTTP status from the endpoint.
type TransportStatusError struct {
	StatusCode int
	Body       string
}

// Error describes the status.
func (statusError TransportStatusError) Error() string {
	trimmedBody := strings.TrimSpace(statusError.Body)
	if len(trimmedBody) == 0 {
		return fmt.Sprintf(statusErrorTemplateConstant, statusError.StatusCode)
	}
	return fmt.Sprintf(statusErrorWithBodyTemplateConstant, statusError.StatusCode, trimmedBody)
}

// ResponseDecodingError indicates the response body was not a GraphQL JSON envelope.
type ResponseDecodingError struct {
	Cause error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Cause)
}

// Unwrap exposes the JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// OperationError wraps any failure of a whole batch round trip.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the failed operation.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}
