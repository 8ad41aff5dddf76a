package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

const (
	repositoryNotFoundMessageConstant     = "repository not found"
	starNotConfirmedMessageConstant       = "star not confirmed"
	unexpectedEntryTemplateConstant       = "unexpected response entry: %v"
	batchSentLogMessageConstant           = "graphql batch sent"
	batchDecodedLogMessageConstant        = "graphql batch decoded"
	unattributedErrorLogMessageConstant   = "graphql error without alias ignored"
	logFieldOperationConstant             = "operation"
	logFieldRequestCountConstant          = "requests"
	logFieldFailureCountConstant          = "failures"
	logFieldMessageConstant               = "message"
	responseErrorPathFirstElementConstant = 0
)

var nullJSONValue = []byte("null")

// Transport performs one GraphQL POST and returns the raw response body.
type Transport interface {
	Execute(executionContext context.Context, requestBody []byte) ([]byte, error)
}

// RepositoryStarState is the lookup outcome for one alias.
type RepositoryStarState struct {
	Alias          string
	NodeID         string
	AlreadyStarred bool
}

// BatchFailure attributes an error message to one alias.
type BatchFailure struct {
	Alias   string
	Message string
}

// LookupResult accounts for every lookup alias exactly once, either as a state or as a failure.
type LookupResult struct {
	States   []RepositoryStarState
	Failures []BatchFailure
}

// MutationResult accounts for every mutation alias exactly once.
type MutationResult struct {
	ConfirmedAliases []string
	Failures         []BatchFailure
}

// Batcher encodes lookup and mutation batches and decodes their responses.
type Batcher struct {
	logger    *zap.Logger
	transport Transport
}

// NewBatcher constructs a Batcher; a nil logger is replaced with a no-op logger.
func NewBatcher(logger *zap.Logger, transport Transport) (*Batcher, error) {
	if transport == nil {
		return nil, ErrTransportNotConfigured
	}
	resolvedLogger := logger
	if resolvedLogger == nil {
		resolvedLogger = zap.NewNop()
	}
	return &Batcher{logger: resolvedLogger, transport: transport}, nil
}

// Lookup resolves node ids and star state for all requests in one round trip.
func (batcher *Batcher) Lookup(executionContext context.Context, requests []LookupRequest) (LookupResult, error) {
	if len(requests) == 0 {
		return LookupResult{}, nil
	}

	envelope, roundTripError := batcher.roundTrip(executionContext, OperationLookup, EncodeLookupDocument(requests), len(requests))
	if roundTripError != nil {
		return LookupResult{}, roundTripError
	}

	failureMessages := batcher.attributeErrors(OperationLookup, envelope.Errors)
	result := LookupResult{}
	for _, request := range requests {
		if failureMessage, failed := failureMessages[request.Alias]; failed {
			result.Failures = append(result.Failures, BatchFailure{Alias: request.Alias, Message: failureMessage})
			continue
		}

		entry, present := envelope.Data[request.Alias]
		if !present || isNullEntry(entry) {
			result.Failures = append(result.Failures, BatchFailure{Alias: request.Alias, Message: repositoryNotFoundMessageConstant})
			continue
		}

		var repositoryEntry struct {
			ID               string `json:"id"`
			ViewerHasStarred bool   `json:"viewerHasStarred"`
		}
		if decodingError := json.Unmarshal(entry, &repositoryEntry); decodingError != nil || len(repositoryEntry.ID) == 0 {
			result.Failures = append(result.Failures, BatchFailure{Alias: request.Alias, Message: fmt.Sprintf(unexpectedEntryTemplateConstant, string(entry))})
			continue
		}

		result.States = append(result.States, RepositoryStarState{
			Alias:          request.Alias,
			NodeID:         repositoryEntry.ID,
			AlreadyStarred: repositoryEntry.ViewerHasStarred,
		})
	}

	batcher.logger.Debug(
		batchDecodedLogMessageConstant,
		zap.String(logFieldOperationConstant, string(OperationLookup)),
		zap.Int(logFieldRequestCountConstant, len(requests)),
		zap.Int(logFieldFailureCountConstant, len(result.Failures)),
	)
	return result, nil
}

// Mutate stars every requested node in one round trip.
func (batcher *Batcher) Mutate(executionContext context.Context, requests []MutationRequest) (MutationResult, error) {
	if len(requests) == 0 {
		return MutationResult{}, nil
	}

	envelope, roundTripError := batcher.roundTrip(executionContext, OperationMutation, EncodeMutationDocument(requests), len(requests))
	if roundTripError != nil {
		return MutationResult{}, roundTripError
	}

	failureMessages := batcher.attributeErrors(OperationMutation, envelope.Errors)
	result := MutationResult{}
	for _, request := range requests {
		if failureMessage, failed := failureMessages[request.Alias]; failed {
			result.Failures = append(result.Failures, BatchFailure{Alias: request.Alias, Message: failureMessage})
			continue
		}

		entry, present := envelope.Data[request.Alias]
		if !present || isNullEntry(entry) {
			result.Failures = append(result.Failures, BatchFailure{Alias: request.Alias, Message: starNotConfirmedMessageConstant})
			continue
		}
		result.ConfirmedAliases = append(result.ConfirmedAliases, request.Alias)
	}

	batcher.logger.Debug(
		batchDecodedLogMessageConstant,
		zap.String(logFieldOperationConstant, string(OperationMutation)),
		zap.Int(logFieldRequestCountConstant, len(requests)),
		zap.Int(logFieldFailureCountConstant, len(result.Failures)),
	)
	return result, nil
}

type responseEnvelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []responseError            `json:"errors"`
}

type responseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Path    []any  `json:"path"`
}

func (batcher *Batcher) roundTrip(executionContext context.Context, operation OperationName, document string, requestCount int) (responseEnvelope, error) {
	requestBody, encodingError := encodeRequestBody(document)
	if encodingError != nil {
		return responseEnvelope{}, OperationError{Operation: operation, Cause: encodingError}
	}

	batcher.logger.Debug(
		batchSentLogMessageConstant,
		zap.String(logFieldOperationConstant, string(operation)),
		zap.Int(logFieldRequestCountConstant, requestCount),
	)

	responseBody, transportError := batcher.transport.Execute(executionContext, requestBody)
	if transportError != nil {
		return responseEnvelope{}, OperationError{Operation: operation, Cause: transportError}
	}

	var envelope responseEnvelope
	if decodingError := json.Unmarshal(bytes.TrimSpace(responseBody), &envelope); decodingError != nil {
		return responseEnvelope{}, OperationError{Operation: operation, Cause: ResponseDecodingError{Cause: decodingError}}
	}

	if envelope.Data == nil {
		messages := make([]string, 0, len(envelope.Errors))
		for _, responseErrorEntry := range envelope.Errors {
			messages = append(messages, responseErrorEntry.Message)
		}
		return responseEnvelope{}, OperationError{Operation: operation, Cause: TransportFatalError{Messages: messages}}
	}

	return envelope, nil
}

// attributeErrors maps the first path element of each error to its message; the first message per alias wins.
func (batcher *Batcher) attributeErrors(operation OperationName, responseErrors []responseError) map[string]string {
	failureMessages := make(map[string]string, len(responseErrors))
	for _, responseErrorEntry := range responseErrors {
		alias, attributable := errorAlias(responseErrorEntry)
		if !attributable {
			batcher.logger.Warn(
				unattributedErrorLogMessageConstant,
				zap.String(logFieldOperationConstant, string(operation)),
				zap.String(logFieldMessageConstant, responseErrorEntry.Message),
			)
			continue
		}
		if _, recorded := failureMessages[alias]; recorded {
			continue
		}
		failureMessages[alias] = responseErrorEntry.Message
	}
	return failureMessages
}

func errorAlias(responseErrorEntry responseError) (string, bool) {
	if len(responseErrorEntry.Path) == 0 {
		return "", false
	}
	alias, isString := responseErrorEntry.Path[responseErrorPathFirstElementConstant].(string)
	if !isString || len(alias) == 0 {
		return "", false
	}
	return alias, true
}

func isNullEntry(entry json.RawMessage) bool {
	return len(entry) == 0 || bytes.Equal(bytes.TrimSpace(entry), nullJSONValue)
}
