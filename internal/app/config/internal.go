package config

type InternalConfig struct {
	App       App
	FHIR      AppFHIR
	JWT       AppJWT
	Minio     AppMinio
	RabbitMQ  AppRabbitMQ
	MongoDB   AppMongoDB
	Ingestion AppIngestion
}

type App struct {
	Env                        string
	Port                       string
	Version                    string
	Address                    string
	Timezone                   string
	EndpointPrefix             string
	MaxRequests                int
	ShutdownTimeoutInSeconds   int
	MaxTimeRequestsPerSeconds  int
	RequestBodyLimitInMegabyte int
}

type AppFHIR struct {
	BaseUrl string
}

type AppJWT struct {
	Secret        string
	ExpTimeInHour int
}

type AppMinio struct {
	BucketName string
}

type AppRabbitMQ struct {
	ReportEventQueue string
}

type AppMongoDB struct {
	DbName string
}

// AppIngestion carries the deployment-level defaults the encounter
// provisioning policy depends on. LabEncounterTypeCode and
// DefaultVisitTypeCode have no fallback on purpose: an empty value fails the
// ingest call instead of silently creating mistyped encounters.
type AppIngestion struct {
	LabEncounterTypeCode          string
	DefaultVisitTypeCode          string
	VisitNominalDurationInMinutes int
}
