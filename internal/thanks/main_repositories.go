package thanks

import "strings"

const (
	githubRepositoryURLPrefixConstant = "https://github.com/"
)

// MainRepositoryRule names the flagship repository starred for an owner.
type MainRepositoryRule struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// MainRepositoryTable maps a lowercased GitHub owner to its flagship repository.
type MainRepositoryTable map[string]MainRepositoryRule

// DefaultMainRepositoryTable returns a fresh copy of the curated owner table.
func DefaultMainRepositoryTable() MainRepositoryTable {
	return MainRepositoryTable{
		"api-platform":      githubRule("api-platform/api-platform"),
		"cakephp":           githubRule("cakephp/cakephp"),
		"drupal":            githubRule("drupal/drupal"),
		"illuminate":        githubRule("laravel/laravel"),
		"laravel":           githubRule("laravel/laravel"),
		"nette":             githubRule("nette/nette"),
		"phpdocumentor":     githubRule("phpDocumentor/phpDocumentor2"),
		"piwik":             githubRule("piwik/piwik"),
		"reactphp":          githubRule("reactphp/react"),
		"sebastianbergmann": {Name: "phpunit/phpunit", URL: githubRepositoryURLPrefixConstant + "sebastianbergmann/phpunit"},
		"slimphp":           githubRule("slimphp/Slim"),
		"sylius":            githubRule("Sylius/Sylius"),
		"symfony":           githubRule("symfony/symfony"),
		"yiisoft":           githubRule("yiisoft/yii2"),
		"zendframework":     githubRule("zendframework/zendframework"),
	}
}

// Merge returns a new table with overrides applied on top; rules missing a name or URL are ignored.
func (table MainRepositoryTable) Merge(overrides map[string]MainRepositoryRule) MainRepositoryTable {
	merged := make(MainRepositoryTable, len(table)+len(overrides))
	for owner, rule := range table {
		merged[normalizeOwner(owner)] = rule
	}
	for owner, rule := range overrides {
		trimmedOwner := normalizeOwner(owner)
		trimmedRule := MainRepositoryRule{Name: strings.TrimSpace(rule.Name), URL: strings.TrimSpace(rule.URL)}
		if len(trimmedOwner) == 0 || len(trimmedRule.Name) == 0 || len(trimmedRule.URL) == 0 {
			continue
		}
		merged[trimmedOwner] = trimmedRule
	}
	return merged
}

// Lookup reports the rule for an owner. Owners match case-insensitively since
// configuration keys arrive lowercased.
func (table MainRepositoryTable) Lookup(owner string) (MainRepositoryRule, bool) {
	rule, found := table[normalizeOwner(owner)]
	return rule, found
}

func normalizeOwner(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}

func githubRule(fullName string) MainRepositoryRule {
	return MainRepositoryRule{Name: fullName, URL: githubRepositoryURLPrefixConstant + fullName}
}
