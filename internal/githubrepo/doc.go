// Package githubrepo recognizes GitHub repository URLs.
//
// It exposes ParseRepositoryURL for the https://github.com/{owner}/{repo}
// shape used to build star targets and ParseOwner for the looser
// https://github.com/{owner} shape used to detect organizations.
package githubrepo
