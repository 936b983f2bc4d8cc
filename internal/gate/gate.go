package gate

import (
	"fmt"

	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region check-groups
// CheckGroups validates a remote clustering response against the candidates
// that were sent. Hard vetoes reject the whole response; an accepted
// response is resolved back to full view spaces with each representative
// moved to the front of its member list.
func CheckGroups(candidates []viewspace.ViewSpace, refs []viewspace.GroupRef, maxGroups int) Decision {
	byIndex := make(map[int]viewspace.ViewSpace, len(candidates))
	for _, c := range candidates {
		byIndex[c.Index] = c
	}

	var vetoes []VetoSignal
	seen := make(map[int]bool, len(candidates))

	// 1. Group cap
	if maxGroups > 0 && len(refs) > maxGroups {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoGroupCap,
			Reason: fmt.Sprintf("%d groups exceed cap %d", len(refs), maxGroups),
		})
	}

	for gi, ref := range refs {
		// 2. Empty group
		if len(ref.Members) == 0 {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoEmptyGroup,
				Reason: fmt.Sprintf("group %d has no members", gi),
			})
			continue
		}

		// 3. Representative must be one of the members
		repListed := false
		for _, idx := range ref.Members {
			if idx == ref.Representative {
				repListed = true
			}
			// 4. Unknown and duplicate members
			if _, ok := byIndex[idx]; !ok {
				vetoes = append(vetoes, VetoSignal{
					Type:   VetoUnknownCandidate,
					Reason: fmt.Sprintf("group %d references unknown index %d", gi, idx),
				})
				continue
			}
			if seen[idx] {
				vetoes = append(vetoes, VetoSignal{
					Type:   VetoDuplicateMember,
					Reason: fmt.Sprintf("index %d assigned more than once", idx),
				})
				continue
			}
			seen[idx] = true
		}
		if !repListed {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoOrphanRepresentative,
				Reason: fmt.Sprintf("group %d representative %d is not a member", gi, ref.Representative),
			})
		}
	}

	// 5. Every candidate covered
	for _, c := range candidates {
		if !seen[c.Index] {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoMissingCandidate,
				Reason: fmt.Sprintf("candidate %d not assigned to any group", c.Index),
			})
			break
		}
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	return Decision{
		Action: "accept",
		Reason: fmt.Sprintf("accepted %d groups over %d candidates", len(refs), len(candidates)),
		Groups: resolve(refs, byIndex),
	}
}

// #endregion check-groups

// #region helpers
func resolve(refs []viewspace.GroupRef, byIndex map[int]viewspace.ViewSpace) []viewspace.ClusterGroup {
	groups := make([]viewspace.ClusterGroup, len(refs))
	for i, ref := range refs {
		rep := byIndex[ref.Representative]
		members := make([]viewspace.ViewSpace, 0, len(ref.Members))
		members = append(members, rep)
		for _, idx := range ref.Members {
			if idx == ref.Representative {
				continue
			}
			members = append(members, byIndex[idx])
		}
		groups[i] = viewspace.ClusterGroup{Representative: rep, Members: members}
	}
	return groups
}

// #endregion helpers
