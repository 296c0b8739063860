package reports

import (
	"context"
	"time"

	"labreport-service/internal/app/config"
	"labreport-service/internal/app/contracts"
	"labreport-service/internal/app/models"
	"labreport-service/internal/pkg/constvars"
	"labreport-service/internal/pkg/exceptions"
	"labreport-service/internal/pkg/fhir_dto"
	"labreport-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// encounterProvisioner decides which encounter the ingested report and its
// observations land on. Decision order: an encounter embedded in the bundle
// is always created fresh; an indirect encounter reference must exist; with
// no reference at all, a lab encounter is created under the patient's best
// matching visit, creating the visit too when the patient has none.
type encounterProvisioner struct {
	encounters        contracts.EncounterFhirClient
	practitionerRoles contracts.PractitionerRoleFhirClient
	ingestionConfig   config.AppIngestion
	log               *zap.Logger
}

func newEncounterProvisioner(
	encounters contracts.EncounterFhirClient,
	practitionerRoles contracts.PractitionerRoleFhirClient,
	ingestionConfig config.AppIngestion,
	log *zap.Logger,
) *encounterProvisioner {
	return &encounterProvisioner{
		encounters:        encounters,
		practitionerRoles: practitionerRoles,
		ingestionConfig:   ingestionConfig,
		log:               log,
	}
}

func (p *encounterProvisioner) Provision(
	ctx context.Context,
	session *models.Session,
	resolver *referenceResolver,
	patient *fhir_dto.Patient,
	report *fhir_dto.DiagnosticReport,
	order *resolvedOrder,
) (*fhir_dto.Encounter, error) {
	if report.Encounter != nil && report.Encounter.Reference != "" {
		resolved, embedded, err := resolver.ResolveEncounter(ctx, report.Encounter.Reference)
		if err != nil {
			return nil, err
		}
		if embedded {
			// An embedded encounter is part of the inbound document and is
			// always persisted as a new resource.
			resolved.ID = ""
			resolved.Subject = fhir_dto.Reference{
				Reference: utils.FormatReference(constvars.ResourcePatient, patient.ID),
			}
			return p.encounters.CreateEncounter(ctx, resolved)
		}
		return resolved, nil
	}

	return p.provisionDefaultLabEncounter(ctx, session, patient, order)
}

func (p *encounterProvisioner) provisionDefaultLabEncounter(
	ctx context.Context,
	session *models.Session,
	patient *fhir_dto.Patient,
	order *resolvedOrder,
) (*fhir_dto.Encounter, error) {
	if p.ingestionConfig.LabEncounterTypeCode == "" {
		return nil, exceptions.ErrUnprocessableConfiguration(nil, "INGESTION_LAB_ENCOUNTER_TYPE_CODE")
	}
	if session == nil || session.LocationID == "" {
		return nil, exceptions.ErrUnprocessableConfiguration(nil, "session location")
	}
	if session.PractitionerID == "" {
		return nil, exceptions.ErrUnidentifiedProvider(nil)
	}

	roles, err := p.practitionerRoles.FindPractitionerRolesByPractitioner(ctx, session.PractitionerID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, exceptions.ErrUnidentifiedProvider(nil)
	}

	visit, err := p.findVisit(ctx, patient, order)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		visit, err = p.createVisitInAbsentia(ctx, session, patient)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now().Format(time.RFC3339)
	if visit.Period != nil && visit.Period.Start != "" {
		start = visit.Period.Start
	}

	labEncounter := &fhir_dto.Encounter{
		ResourceType: constvars.ResourceEncounter,
		Status:       constvars.EncounterStatusInProgress,
		Class: fhir_dto.Coding{
			System: constvars.EncounterClassSystem,
			Code:   constvars.EncounterClassAmbulatory,
		},
		Type: []fhir_dto.CodeableConcept{
			{
				Coding: []fhir_dto.Coding{
					{
						System: constvars.EncounterTypeSystemLocal,
						Code:   p.ingestionConfig.LabEncounterTypeCode,
					},
				},
			},
		},
		Subject: fhir_dto.Reference{
			Reference: utils.FormatReference(constvars.ResourcePatient, patient.ID),
		},
		Participant: []fhir_dto.EncounterParticipant{
			{
				Type: []fhir_dto.CodeableConcept{
					{
						Coding: []fhir_dto.Coding{
							{
								System: constvars.EncounterParticipantSystem,
								Code:   constvars.EncounterParticipantPerformer,
							},
						},
					},
				},
				Individual: &fhir_dto.Reference{
					Reference: utils.FormatReference(constvars.ResourcePractitioner, session.PractitionerID),
				},
			},
		},
		Period: &fhir_dto.Period{Start: start},
		Location: []fhir_dto.EncounterLocation{
			{
				Location: fhir_dto.Reference{
					Reference: utils.FormatReference(constvars.ResourceLocation, session.LocationID),
					Display:   session.LocationName,
				},
			},
		},
		PartOf: &fhir_dto.Reference{
			Reference: utils.FormatReference(constvars.ResourceEncounter, visit.ID),
		},
	}

	created, err := p.encounters.CreateEncounter(ctx, labEncounter)
	if err != nil {
		return nil, err
	}

	p.log.Info("Provisioned default lab encounter",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingEncounterIDKey, created.ID),
	)
	return created, nil
}

// findVisit walks the fallback chain: the order's visit, then the patient's
// first active visit, then today's most recent visit of the default type.
func (p *encounterProvisioner) findVisit(ctx context.Context, patient *fhir_dto.Patient, order *resolvedOrder) (*fhir_dto.Encounter, error) {
	if order != nil && order.EncounterRef != "" {
		visit, err := p.visitOfEncounterRef(ctx, order.EncounterRef)
		if err != nil {
			return nil, err
		}
		if visit != nil {
			return visit, nil
		}
	}

	active, err := p.encounters.FindActiveEncountersByPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].IsVisit() {
			return &active[i], nil
		}
	}

	if p.ingestionConfig.DefaultVisitTypeCode == "" {
		return nil, exceptions.ErrUnprocessableConfiguration(nil, "INGESTION_DEFAULT_VISIT_TYPE_CODE")
	}

	todays, err := p.encounters.FindEncountersByPatientTypeAndDate(ctx, patient.ID, p.ingestionConfig.DefaultVisitTypeCode, time.Now())
	if err != nil {
		return nil, err
	}
	var latest *fhir_dto.Encounter
	for i := range todays {
		if !todays[i].IsVisit() {
			continue
		}
		if latest == nil || visitStart(&todays[i]) > visitStart(latest) {
			latest = &todays[i]
		}
	}
	return latest, nil
}

// visitOfEncounterRef resolves the referenced encounter to its visit: the
// encounter itself when it is a visit, its partOf otherwise.
func (p *encounterProvisioner) visitOfEncounterRef(ctx context.Context, reference string) (*fhir_dto.Encounter, error) {
	resourceType, id, ok := utils.ReferenceComponents(reference)
	if !ok || resourceType != constvars.ResourceEncounter {
		return nil, nil
	}
	encounter, err := p.encounters.FindEncounterByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if encounter == nil {
		return nil, nil
	}
	if encounter.IsVisit() {
		return encounter, nil
	}

	parentType, parentID, ok := utils.ReferenceComponents(encounter.PartOf.Reference)
	if !ok || parentType != constvars.ResourceEncounter {
		return nil, nil
	}
	return p.encounters.FindEncounterByID(ctx, parentID)
}

// createVisitInAbsentia opens a visit on the patient's behalf with a nominal
// duration, so a lab result arriving without any scheduled contact still has
// a visit to hang off.
func (p *encounterProvisioner) createVisitInAbsentia(ctx context.Context, session *models.Session, patient *fhir_dto.Patient) (*fhir_dto.Encounter, error) {
	now := time.Now()
	duration := time.Duration(p.ingestionConfig.VisitNominalDurationInMinutes) * time.Minute

	visit := &fhir_dto.Encounter{
		ResourceType: constvars.ResourceEncounter,
		Status:       constvars.EncounterStatusInProgress,
		Class: fhir_dto.Coding{
			System: constvars.EncounterClassSystem,
			Code:   constvars.EncounterClassAmbulatory,
		},
		Type: []fhir_dto.CodeableConcept{
			{
				Coding: []fhir_dto.Coding{
					{
						System: constvars.EncounterTypeSystemLocal,
						Code:   p.ingestionConfig.DefaultVisitTypeCode,
					},
				},
			},
		},
		Subject: fhir_dto.Reference{
			Reference: utils.FormatReference(constvars.ResourcePatient, patient.ID),
		},
		Period: &fhir_dto.Period{
			Start: now.Format(time.RFC3339),
			End:   now.Add(duration).Format(time.RFC3339),
		},
		Location: []fhir_dto.EncounterLocation{
			{
				Location: fhir_dto.Reference{
					Reference: utils.FormatReference(constvars.ResourceLocation, session.LocationID),
					Display:   session.LocationName,
				},
			},
		},
	}

	created, err := p.encounters.CreateEncounter(ctx, visit)
	if err != nil {
		return nil, err
	}

	p.log.Info("Created visit in absentia",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingEncounterIDKey, created.ID),
	)
	return created, nil
}

func visitStart(encounter *fhir_dto.Encounter) string {
	if encounter.Period == nil {
		return ""
	}
	return encounter.Period.Start
}
