package constvars

const (
	ResourceBundle            = "Bundle"
	ResourcePatient           = "Patient"
	ResourceObservation       = "Observation"
	ResourceEncounter         = "Encounter"
	ResourceDiagnosticReport  = "DiagnosticReport"
	ResourceServiceRequest    = "ServiceRequest"
	ResourceMedicationRequest = "MedicationRequest"
	ResourcePractitioner      = "Practitioner"
	ResourcePractitionerRole  = "PractitionerRole"
	ResourceLocation          = "Location"
)

const (
	FhirLocalReferencePrefix = "urn:uuid:"
)

const (
	EncounterStatusPlanned    = "planned"
	EncounterStatusInProgress = "in-progress"
	EncounterStatusFinished   = "finished"
)

const (
	EncounterClassSystem         = "http://terminology.hl7.org/CodeSystem/v3-ActCode"
	EncounterClassAmbulatory     = "AMB"
	EncounterTypeSystemLocal     = "http://fhir.labreport.local/CodeSystem/encounter-type"
	EncounterParticipantSystem   = "http://terminology.hl7.org/CodeSystem/v3-ParticipationType"
	EncounterParticipantPerformer = "PPRF"
)

// DiagnosticReport statuses classified as draft. A draft report is exempt from
// the results-or-attachment requirement.
var DiagnosticReportDraftStatuses = map[string]bool{
	"registered":  true,
	"partial":     true,
	"preliminary": true,
}

const (
	ObservationStatusFinal = "final"
)

const (
	FhirSearchParamSubject = "subject"
	FhirSearchParamStatus  = "status"
	FhirSearchParamType    = "type"
	FhirSearchParamDate    = "date"
	FhirSearchParamPractitioner = "practitioner"
)
