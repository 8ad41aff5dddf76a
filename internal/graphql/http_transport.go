package graphql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public GitHub GraphQL endpoint.
	DefaultEndpoint                      = "https://api.github.com/graphql"
	defaultUserAgentConstant             = "thanks (https://github.com/temirov/thanks)"
	authorizationHeaderConstant          = "Authorization"
	authorizationValueTemplateConstant   = "bearer %s"
	contentTypeHeaderConstant            = "Content-Type"
	acceptHeaderConstant                 = "Accept"
	userAgentHeaderConstant              = "User-Agent"
	jsonMediaTypeConstant                = "application/json"
	rateLimiterBurstConstant             = 1
	rateLimitWaitErrorTemplateConstant   = "rate limit wait failed: %w"
	requestCreationErrorTemplateConstant = "unable to create graphql request: %w"
	requestDeliveryErrorTemplateConstant = "unable to deliver graphql request: %w"
	responseReadErrorTemplateConstant    = "unable to read graphql response: %w"
	successfulStatusLowerBoundConstant   = 200
	successfulStatusUpperBoundConstant   = 300
)

// HTTPTransportConfiguration describes how to reach the GraphQL endpoint.
type HTTPTransportConfiguration struct {
	Endpoint          string
	Token             string
	UserAgent         string
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// HTTPTransport posts GraphQL documents with net/http.
type HTTPTransport struct {
	endpoint    string
	token       string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewHTTPTransport validates the configuration; a non-positive RequestsPerSecond disables pacing.
func NewHTTPTransport(configuration HTTPTransportConfiguration) (*HTTPTransport, error) {
	endpoint := strings.TrimSpace(configuration.Endpoint)
	if len(endpoint) == 0 {
		return nil, errors.New(endpointRequiredMessageConstant)
	}

	userAgent := strings.TrimSpace(configuration.UserAgent)
	if len(userAgent) == 0 {
		userAgent = defaultUserAgentConstant
	}

	httpClient := configuration.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	requestLimit := rate.Inf
	if configuration.RequestsPerSecond > 0 {
		requestLimit = rate.Limit(configuration.RequestsPerSecond)
	}

	return &HTTPTransport{
		endpoint:    endpoint,
		token:       strings.TrimSpace(configuration.Token),
		userAgent:   userAgent,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(requestLimit, rateLimiterBurstConstant),
	}, nil
}

// Execute posts the request body and returns the response body of a 2xx reply.
func (transport *HTTPTransport) Execute(executionContext context.Context, requestBody []byte) ([]byte, error) {
	if waitError := transport.rateLimiter.Wait(executionContext); waitError != nil {
		return nil, fmt.Errorf(rateLimitWaitErrorTemplateConstant, waitError)
	}

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodPost, transport.endpoint, bytes.NewReader(requestBody))
	if requestError != nil {
		return nil, fmt.Errorf(requestCreationErrorTemplateConstant, requestError)
	}
	request.Header.Set(contentTypeHeaderConstant, jsonMediaTypeConstant)
	request.Header.Set(acceptHeaderConstant, jsonMediaTypeConstant)
	request.Header.Set(userAgentHeaderConstant, transport.userAgent)
	if len(transport.token) > 0 {
		request.Header.Set(authorizationHeaderConstant, fmt.Sprintf(authorizationValueTemplateConstant, transport.token))
	}

	response, deliveryError := transport.httpClient.Do(request)
	if deliveryError != nil {
		return nil, fmt.Errorf(requestDeliveryErrorTemplateConstant, deliveryError)
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, fmt.Errorf(responseReadErrorTemplateConstant, readError)
	}

	if response.StatusCode < successfulStatusLowerBoundConstant || response.StatusCode >= successfulStatusUpperBoundConstant {
		return nil, TransportStatusError{StatusCode: response.StatusCode, Body: string(responseBody)}
	}

	return responseBody, nil
}
