package reports

import (
	"context"
	"encoding/json"

	"labreport-service/internal/app/contracts"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
	"labreport-service/internal/pkg/utils"
)

// resolvedOrder is the outcome of order resolution: the final reference the
// persisted resources will carry and the encounter the order was placed
// under, when it has one.
type resolvedOrder struct {
	Reference    string
	EncounterRef string
}

// referenceResolver resolves bundle references either against the bundle
// itself (embedded targets) or against the FHIR server (indirect targets).
// Every Find call treats a missing resource as (nil, nil), so "not found"
// stays distinguishable from transport failures.
type referenceResolver struct {
	index              *bundleIndex
	patients           contracts.PatientFhirClient
	observations       contracts.ObservationFhirClient
	encounters         contracts.EncounterFhirClient
	serviceRequests    contracts.ServiceRequestFhirClient
	medicationRequests contracts.MedicationRequestFhirClient
}

func newReferenceResolver(
	index *bundleIndex,
	patients contracts.PatientFhirClient,
	observations contracts.ObservationFhirClient,
	encounters contracts.EncounterFhirClient,
	serviceRequests contracts.ServiceRequestFhirClient,
	medicationRequests contracts.MedicationRequestFhirClient,
) *referenceResolver {
	return &referenceResolver{
		index:              index,
		patients:           patients,
		observations:       observations,
		encounters:         encounters,
		serviceRequests:    serviceRequests,
		medicationRequests: medicationRequests,
	}
}

// ResolvePatient returns the patient the reference points at, or (nil, nil)
// when the reference is empty, malformed, or targets nothing.
func (r *referenceResolver) ResolvePatient(ctx context.Context, reference string) (*fhir_dto.Patient, error) {
	if reference == "" {
		return nil, nil
	}

	if resource, ok := r.index.lookup(reference); ok {
		if resource.Header.ResourceType != constvars.ResourcePatient {
			return nil, nil
		}
		patient := new(fhir_dto.Patient)
		if err := json.Unmarshal(resource.Raw, patient); err != nil {
			return nil, exceptions.ErrCannotParseJSON(err)
		}
		return patient, nil
	}

	resourceType, id, ok := utils.ReferenceComponents(reference)
	if !ok || resourceType != constvars.ResourcePatient {
		return nil, nil
	}
	return r.patients.FindPatientByID(ctx, id)
}

// ResolveObservation returns the observation behind the reference. The
// second return reports whether the target was embedded in the bundle.
func (r *referenceResolver) ResolveObservation(ctx context.Context, reference string) (*fhir_dto.Observation, bool, error) {
	if resource, ok := r.index.lookup(reference); ok {
		if resource.Header.ResourceType != constvars.ResourceObservation {
			return nil, false, nil
		}
		observation := new(fhir_dto.Observation)
		if err := json.Unmarshal(resource.Raw, observation); err != nil {
			return nil, false, exceptions.ErrCannotParseJSON(err)
		}
		return observation, true, nil
	}

	resourceType, id, ok := utils.ReferenceComponents(reference)
	if !ok || resourceType != constvars.ResourceObservation {
		return nil, false, nil
	}
	observation, err := r.observations.FindObservationByID(ctx, id)
	return observation, false, err
}

// ResolveOrder dispatches on the reference's sub-kind. Service requests and
// medication requests are the only order kinds the pipeline accepts.
func (r *referenceResolver) ResolveOrder(ctx context.Context, reference string) (*resolvedOrder, error) {
	resourceType, id, ok := utils.ReferenceComponents(reference)
	if !ok {
		if utils.IsLocalReference(reference) {
			return nil, exceptions.ErrInvalidOrderReference(nil, reference)
		}
		return nil, exceptions.ErrUnsupportedReferenceKind(nil, reference)
	}

	switch resourceType {
	case constvars.ResourceServiceRequest:
		order, err := r.serviceRequests.FindServiceRequestByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, exceptions.ErrInvalidOrderReference(nil, reference)
		}
		resolved := &resolvedOrder{Reference: reference}
		if order.Encounter != nil {
			resolved.EncounterRef = order.Encounter.Reference
		}
		return resolved, nil
	case constvars.ResourceMedicationRequest:
		order, err := r.medicationRequests.FindMedicationRequestByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, exceptions.ErrInvalidOrderReference(nil, reference)
		}
		resolved := &resolvedOrder{Reference: reference}
		if order.Encounter != nil {
			resolved.EncounterRef = order.Encounter.Reference
		}
		return resolved, nil
	default:
		return nil, exceptions.ErrUnsupportedReferenceKind(nil, reference)
	}
}

// ResolveEncounter handles the report's own encounter reference. An embedded
// target comes back with embedded=true and must be created fresh; an
// indirect target is looked up and must exist.
func (r *referenceResolver) ResolveEncounter(ctx context.Context, reference string) (encounter *fhir_dto.Encounter, embedded bool, err error) {
	if resource, ok := r.index.lookup(reference); ok {
		if resource.Header.ResourceType != constvars.ResourceEncounter {
			return nil, false, exceptions.ErrInvalidEncounterReference(nil, reference)
		}
		encounter := new(fhir_dto.Encounter)
		if err := json.Unmarshal(resource.Raw, encounter); err != nil {
			return nil, false, exceptions.ErrCannotParseJSON(err)
		}
		return encounter, true, nil
	}

	resourceType, id, ok := utils.ReferenceComponents(reference)
	if !ok || resourceType != constvars.ResourceEncounter {
		return nil, false, exceptions.ErrInvalidEncounterReference(nil, reference)
	}
	found, err := r.encounters.FindEncounterByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if found == nil {
		return nil, false, exceptions.ErrInvalidEncounterReference(nil, reference)
	}
	return found, false, nil
}

// sameSubject reports whether an observation's subject matches the report's.
// Both local and relative spellings of the patient reference are accepted.
func (r *referenceResolver) sameSubject(observationSubject, reportSubject string, patient *fhir_dto.Patient) bool {
	if observationSubject == reportSubject {
		return true
	}
	if patient != nil && patient.ID != "" {
		relative := utils.FormatReference(constvars.ResourcePatient, patient.ID)
		if observationSubject == relative {
			return true
		}
	}
	if canonical, ok := r.index.Aliases[observationSubject]; ok {
		if reportCanonical, ok2 := r.index.Aliases[reportSubject]; ok2 {
			return canonical == reportCanonical
		}
	}
	return false
}
