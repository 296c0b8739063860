package reports

import (
	"context"

	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
)

// bundleValidator runs the pre-persistence checks in a fixed order and
// performs no writes. The resolved patient is returned so the orchestrator
// does not fetch it twice.
type bundleValidator struct {
	resolver *referenceResolver
}

func newBundleValidator(resolver *referenceResolver) *bundleValidator {
	return &bundleValidator{resolver: resolver}
}

func (v *bundleValidator) Validate(ctx context.Context, index *bundleIndex) (*fhir_dto.Patient, error) {
	report := index.Report
	if report == nil {
		return nil, exceptions.ErrBundleMissingReport(nil)
	}

	patient, err := v.resolver.ResolvePatient(ctx, report.Subject.Reference)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, exceptions.ErrInvalidPatientReference(nil)
	}

	// Draft reports may arrive before any result exists.
	if !constvars.DiagnosticReportDraftStatuses[report.Status] {
		if len(report.Result) == 0 && len(report.PresentedForm) == 0 {
			return nil, exceptions.ErrBundleMissingResultsOrAttachment(nil)
		}
	}

	for _, result := range report.Result {
		observation, _, err := v.resolver.ResolveObservation(ctx, result.Reference)
		if err != nil {
			return nil, err
		}
		if observation == nil {
			return nil, exceptions.ErrInvalidResultReference(nil, result.Reference)
		}
		if !v.resolver.sameSubject(observation.Subject.Reference, report.Subject.Reference, patient) {
			return nil, exceptions.ErrPatientReferenceMismatch(nil, result.Reference)
		}
	}

	return patient, nil
}
