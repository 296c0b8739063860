package reports

import (
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
	"labreport-service/internal/pkg/utils"
)

// observationEntry pairs an embedded observation with its canonical local id.
type observationEntry struct {
	LocalID     string
	Observation *fhir_dto.Observation
}

// sortObservationsByDepth orders observations so every member precedes the
// observation containing it, which lets the persist loop rewrite hasMember
// references to already-assigned server ids. Independent subtrees keep their
// input order. Post-order depth-first walk; the visited set makes a
// maliciously constructed reference cycle terminate instead of recursing
// forever.
func sortObservationsByDepth(entries []observationEntry, aliases map[string]string) []observationEntry {
	byLocalID := make(map[string]observationEntry, len(entries))
	for _, entry := range entries {
		byLocalID[entry.LocalID] = entry
	}

	sorted := make([]observationEntry, 0, len(entries))
	visited := make(map[string]bool, len(entries))

	var visit func(entry observationEntry)
	visit = func(entry observationEntry) {
		if visited[entry.LocalID] {
			return
		}
		visited[entry.LocalID] = true

		for _, member := range entry.Observation.HasMember {
			canonical, ok := aliases[member.Reference]
			if !ok {
				continue
			}
			memberEntry, ok := byLocalID[canonical]
			if !ok {
				continue
			}
			visit(memberEntry)
		}

		sorted = append(sorted, entry)
	}

	for _, entry := range entries {
		visit(entry)
	}

	return sorted
}

// rewriteMemberReferences replaces local hasMember references with the final
// server-assigned ones recorded in refMap. A member that points into the
// bundle but has no refMap entry breaks the persist ordering contract, which
// is an internal fault rather than a caller mistake. References to resources
// outside the bundle pass through untouched.
func rewriteMemberReferences(observation *fhir_dto.Observation, aliases map[string]string, refMap map[string]string) error {
	for i, member := range observation.HasMember {
		canonical, ok := aliases[member.Reference]
		if !ok {
			continue
		}
		final, ok := refMap[canonical]
		if !ok {
			return exceptions.ErrReferenceMapInvariant(nil, member.Reference)
		}
		observation.HasMember[i].Reference = final
	}
	return nil
}

// rewriteResultReferences maps the report's result references to the
// persisted observation ids. Local references must all have been persisted
// by the time this runs.
func rewriteResultReferences(report *fhir_dto.DiagnosticReport, aliases map[string]string, refMap map[string]string) error {
	for i, result := range report.Result {
		canonical, ok := aliases[result.Reference]
		if !ok {
			if utils.IsLocalReference(result.Reference) {
				return exceptions.ErrReferenceMapInvariant(nil, result.Reference)
			}
			continue
		}
		final, ok := refMap[canonical]
		if !ok {
			return exceptions.ErrReferenceMapInvariant(nil, result.Reference)
		}
		report.Result[i].Reference = final
	}
	return nil
}
