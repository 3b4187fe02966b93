package prompts

import "strings"

// MergeProfiles folds src into dst for the document-upload path:
// list fields (services, FAQs, objections, policies) are unioned with
// de-duplication, primitive fields are overwritten only when currently empty.
// dst is not mutated.
func MergeProfiles(dst, src AgentPromptProfile) AgentPromptProfile {
	out := dst

	out.CompanyName = fillIfEmpty(out.CompanyName, src.CompanyName)
	out.Industry = fillIfEmpty(out.Industry, src.Industry)
	out.WebsiteURL = fillIfEmpty(out.WebsiteURL, src.WebsiteURL)
	out.Description = fillIfEmpty(out.Description, src.Description)
	out.TargetAudience = fillIfEmpty(out.TargetAudience, src.TargetAudience)
	out.ValueProposition = fillIfEmpty(out.ValueProposition, src.ValueProposition)
	out.CallType = fillIfEmpty(out.CallType, src.CallType)
	out.CallGoal = fillIfEmpty(out.CallGoal, src.CallGoal)
	out.Tone = fillIfEmpty(out.Tone, src.Tone)

	out.Services = unionLists(out.Services, src.Services)
	out.FAQs = unionLists(out.FAQs, src.FAQs)
	out.Objections = unionLists(out.Objections, src.Objections)
	out.Policies = unionLists(out.Policies, src.Policies)

	return out
}

func fillIfEmpty(cur, next string) string {
	if strings.TrimSpace(cur) == "" {
		return next
	}
	return cur
}

// unionLists appends items from b that are not already in a (case-insensitive,
// whitespace-trimmed comparison), preserving order.
func unionLists(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, lst := range [][]string{a, b} {
		for _, item := range lst {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
