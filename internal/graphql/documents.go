package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	aliasTemplateConstant              = "_%d"
	lookupItemTemplateConstant         = "%s: repository(owner:%s,name:%s){id,viewerHasStarred}"
	mutationItemTemplateConstant       = "%s: addStar(input:{clientMutationId:%s,starrableId:%s}){clientMutationId}"
	queryDocumentTemplateConstant      = "query{\n%s\n}"
	mutationDocumentTemplateConstant   = "mutation{\n%s\n}"
	documentItemSeparatorConstant      = "\n"
	requestBodyDocumentFieldConstant   = "query"
	quotedStringFallbackFormatConstant = "%q"
)

// LookupRequest asks for the node id and viewer star state of one repository.
type LookupRequest struct {
	Alias      string
	Owner      string
	Repository string
}

// MutationRequest asks to star one repository node.
type MutationRequest struct {
	Alias  string
	NodeID string
}

// AliasForIndex returns the alias of the zero-based position within a batch: _1, _2, ...
func AliasForIndex(index int) string {
	return fmt.Sprintf(aliasTemplateConstant, index+1)
}

// EncodeLookupDocument renders one query document aliasing every request.
func EncodeLookupDocument(requests []LookupRequest) string {
	items := make([]string, 0, len(requests))
	for _, request := range requests {
		items = append(items, fmt.Sprintf(lookupItemTemplateConstant, request.Alias, quoteString(request.Owner), quoteString(request.Repository)))
	}
	return fmt.Sprintf(queryDocumentTemplateConstant, strings.Join(items, documentItemSeparatorConstant))
}

// EncodeMutationDocument renders one mutation document; each clientMutationId equals its alias.
func EncodeMutationDocument(requests []MutationRequest) string {
	items := make([]string, 0, len(requests))
	for _, request := range requests {
		items = append(items, fmt.Sprintf(mutationItemTemplateConstant, request.Alias, quoteString(request.Alias), quoteString(request.NodeID)))
	}
	return fmt.Sprintf(mutationDocumentTemplateConstant, strings.Join(items, documentItemSeparatorConstant))
}

func encodeRequestBody(document string) ([]byte, error) {
	return json.Marshal(map[string]string{requestBodyDocumentFieldConstant: document})
}

func quoteString(value string) string {
	encodedValue, encodingError := json.Marshal(value)
	if encodingError != nil {
		return fmt.Sprintf(quotedStringFallbackFormatConstant, value)
	}
	return string(encodedValue)
}
