package reports

import (
	"testing"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observationWithMembers(members ...string) *fhir_dto.Observation {
	observation := &fhir_dto.Observation{
		ResourceType: constvars.ResourceObservation,
		Status:       constvars.ObservationStatusFinal,
	}
	for _, member := range members {
		observation.HasMember = append(observation.HasMember, fhir_dto.Reference{Reference: member})
	}
	return observation
}

func identityAliases(entries []observationEntry) map[string]string {
	aliases := make(map[string]string, len(entries))
	for _, entry := range entries {
		aliases[entry.LocalID] = entry.LocalID
	}
	return aliases
}

func sortedIDs(entries []observationEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.LocalID)
	}
	return ids
}

func TestSortObservationsByDepth(t *testing.T) {
	t.Run("Members Precede Their Panel", func(t *testing.T) {
		entries := []observationEntry{
			{LocalID: "panel", Observation: observationWithMembers("leaf-a", "leaf-b")},
			{LocalID: "leaf-a", Observation: observationWithMembers()},
			{LocalID: "leaf-b", Observation: observationWithMembers()},
		}

		sorted := sortObservationsByDepth(entries, identityAliases(entries))

		assert.Equal(t, []string{"leaf-a", "leaf-b", "panel"}, sortedIDs(sorted))
	})

	t.Run("Nested Panels Sort Deepest First", func(t *testing.T) {
		entries := []observationEntry{
			{LocalID: "outer", Observation: observationWithMembers("inner")},
			{LocalID: "inner", Observation: observationWithMembers("leaf")},
			{LocalID: "leaf", Observation: observationWithMembers()},
		}

		sorted := sortObservationsByDepth(entries, identityAliases(entries))

		assert.Equal(t, []string{"leaf", "inner", "outer"}, sortedIDs(sorted))
	})

	t.Run("Independent Subtrees Keep Input Order", func(t *testing.T) {
		entries := []observationEntry{
			{LocalID: "first", Observation: observationWithMembers()},
			{LocalID: "second", Observation: observationWithMembers()},
			{LocalID: "third", Observation: observationWithMembers()},
		}

		sorted := sortObservationsByDepth(entries, identityAliases(entries))

		assert.Equal(t, []string{"first", "second", "third"}, sortedIDs(sorted))
	})

	t.Run("Reference Cycle Terminates", func(t *testing.T) {
		entries := []observationEntry{
			{LocalID: "a", Observation: observationWithMembers("b")},
			{LocalID: "b", Observation: observationWithMembers("a")},
		}

		sorted := sortObservationsByDepth(entries, identityAliases(entries))

		assert.Len(t, sorted, 2, "every observation should come out exactly once")
	})

	t.Run("External Members Are Ignored", func(t *testing.T) {
		entries := []observationEntry{
			{LocalID: "panel", Observation: observationWithMembers("Observation/on-server")},
		}

		sorted := sortObservationsByDepth(entries, identityAliases(entries))

		assert.Equal(t, []string{"panel"}, sortedIDs(sorted))
	})
}

func TestRewriteMemberReferences(t *testing.T) {
	t.Run("Local Members Rewritten To Server References", func(t *testing.T) {
		observation := observationWithMembers(localRef("leaf-a"), "Observation/on-server")
		aliases := map[string]string{localRef("leaf-a"): localRef("leaf-a")}
		refMap := map[string]string{localRef("leaf-a"): "Observation/obs-1"}

		err := rewriteMemberReferences(observation, aliases, refMap)

		require.NoError(t, err)
		assert.Equal(t, "Observation/obs-1", observation.HasMember[0].Reference)
		assert.Equal(t, "Observation/on-server", observation.HasMember[1].Reference, "external references stay untouched")
	})

	t.Run("Missing RefMap Entry Is An Invariant Violation", func(t *testing.T) {
		observation := observationWithMembers(localRef("leaf-a"))
		aliases := map[string]string{localRef("leaf-a"): localRef("leaf-a")}

		err := rewriteMemberReferences(observation, aliases, map[string]string{})

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Equal(t, constvars.StatusInternalServerError, customErr.StatusCode)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevReferenceMapMissingEntry)
	})
}

func TestRewriteResultReferences(t *testing.T) {
	t.Run("Local Results Rewritten", func(t *testing.T) {
		report := &fhir_dto.DiagnosticReport{
			Result: []fhir_dto.Reference{
				{Reference: localRef("obs-a")},
				{Reference: "Observation/on-server"},
			},
		}
		aliases := map[string]string{localRef("obs-a"): localRef("obs-a")}
		refMap := map[string]string{localRef("obs-a"): "Observation/obs-1"}

		err := rewriteResultReferences(report, aliases, refMap)

		require.NoError(t, err)
		assert.Equal(t, "Observation/obs-1", report.Result[0].Reference)
		assert.Equal(t, "Observation/on-server", report.Result[1].Reference)
	})

	t.Run("Unaliased Local Result Is An Invariant Violation", func(t *testing.T) {
		report := &fhir_dto.DiagnosticReport{
			Result: []fhir_dto.Reference{{Reference: localRef("never-indexed")}},
		}

		err := rewriteResultReferences(report, map[string]string{}, map[string]string{})

		var customErr *exceptions.CustomError
		require.ErrorAs(t, err, &customErr)
		assert.Contains(t, customErr.DevMessage, constvars.ErrDevReferenceMapMissingEntry)
	})
}
