package thanks

import (
	"sort"

	"github.com/temirov/thanks/internal/dependencies"
	"github.com/temirov/thanks/internal/githubrepo"
)

// TargetRepository is one star target keyed by package name or promoted main repository name.
type TargetRepository struct {
	LogicalKey string
	URL        string
}

// TargetMap holds unique logical keys in ascending lexicographic order.
type TargetMap []TargetRepository

// URLs returns the key to URL mapping.
func (targetMap TargetMap) URLs() map[string]string {
	urls := make(map[string]string, len(targetMap))
	for _, target := range targetMap {
		urls[target.LogicalKey] = target.URL
	}
	return urls
}

// RepositoryURLResolver derives star targets from package records.
type RepositoryURLResolver struct {
	mainRepositories MainRepositoryTable
}

// NewRepositoryURLResolver constructs a resolver; a nil table selects the default table.
func NewRepositoryURLResolver(mainRepositories MainRepositoryTable) *RepositoryURLResolver {
	resolvedTable := mainRepositories
	if resolvedTable == nil {
		resolvedTable = DefaultMainRepositoryTable()
	}
	return &RepositoryURLResolver{mainRepositories: resolvedTable}
}

// Resolve seeds the bootstrap targets, then applies overrides, inferred source URLs,
// and main repository promotions gated on direct dependencies.
// Explicit extra.thanks overrides are never replaced by inferred entries or promotions.
func (resolver *RepositoryURLResolver) Resolve(bootstrapTargets []dependencies.BootstrapTarget, packageRecords []dependencies.PackageRecord) TargetMap {
	urls := make(map[string]string, len(bootstrapTargets)+len(packageRecords))
	explicitKeys := make(map[string]struct{})

	inferTarget := func(logicalKey string, url string) {
		if _, explicit := explicitKeys[logicalKey]; explicit {
			return
		}
		urls[logicalKey] = url
	}

	for _, bootstrapTarget := range bootstrapTargets {
		urls[bootstrapTarget.LogicalKey] = bootstrapTarget.URL
	}

	for _, packageRecord := range packageRecords {
		if override, hasOverride := packageRecord.ThanksOverride(); hasOverride {
			urls[override.Name] = override.URL
			explicitKeys[override.Name] = struct{}{}
		}

		if !packageRecord.Type.IsCode() || len(packageRecord.SourceURL) == 0 {
			continue
		}
		inferTarget(packageRecord.Name, packageRecord.SourceURL)

		owner, ownerError := githubrepo.ParseOwner(packageRecord.SourceURL)
		if ownerError != nil || !packageRecord.IsDirectDependency {
			continue
		}
		if rule, promoted := resolver.mainRepositories.Lookup(owner); promoted {
			inferTarget(rule.Name, rule.URL)
		}
	}

	targetMap := make(TargetMap, 0, len(urls))
	for logicalKey, url := range urls {
		targetMap = append(targetMap, TargetRepository{LogicalKey: logicalKey, URL: url})
	}
	sort.Slice(targetMap, func(leftIndex int, rightIndex int) bool {
		return targetMap[leftIndex].LogicalKey < targetMap[rightIndex].LogicalKey
	})
	return targetMap
}
