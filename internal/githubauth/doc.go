// Package githubauth locates the GitHub token used to authorize GraphQL calls.
//
// Tokens come from an explicit source (env:NAME or file:/path) or from the
// GH_TOKEN, GITHUB_TOKEN, GITHUB_API_TOKEN chain. A dotenv file can supply
// values that take precedence over the process environment.
package githubauth
