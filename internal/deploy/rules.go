package deploy

import (
	"fmt"

	"github.com/vietdv277/stratus/pkg/types"
)

// ResolveRules fills in rules that are scoped to the caller's public IP.
// A rule with an empty SourceCIDR wants the caller's address as a /32;
// when no address is known those rules are dropped rather than opened
// to the world, and the remaining rules still apply.
func ResolveRules(rules []types.FirewallRule, callerIP string) []types.FirewallRule {
	resolved := make([]types.FirewallRule, 0, len(rules))
	for _, rule := range rules {
		if rule.SourceCIDR == "" {
			if callerIP == "" {
				continue
			}
			rule.SourceCIDR = fmt.Sprintf("%s/32", callerIP)
		}
		resolved = append(resolved, rule)
	}
	return resolved
}
