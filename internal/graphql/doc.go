// Package graphql batches repository lookups and star mutations into single
// GitHub GraphQL documents.
//
// Batcher encodes aliased documents, sends them through a Transport and
// decodes responses, attributing partial errors to the alias named by each
// error path. HTTPTransport posts to the GraphQL endpoint directly while
// CLITransport delegates to gh api graphql.
package graphql
