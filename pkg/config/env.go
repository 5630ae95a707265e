package config

const (
	EnvPrefix = "BREEZEPOINT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "BREEZEPOINT_APP_ENV"
	EnvPort     = "BREEZEPOINT_APP_PORT"
	EnvLogLvl   = "BREEZEPOINT_LOG_LEVEL"
	EnvDBDSN    = "BREEZEPOINT_DB_DSN"
	EnvDBHost   = "BREEZEPOINT_DB_HOST"
	EnvDBUser   = "BREEZEPOINT_DB_USER"
	EnvDBName   = "BREEZEPOINT_DB_NAME"
	EnvDBPass   = "BREEZEPOINT_DB_PASSWORD"
	EnvDBPort   = "BREEZEPOINT_DB_PORT"
	EnvRedisURL = "BREEZEPOINT_REDIS_URL"

	EnvJWTSecret = "BREEZEPOINT_JWT_SECRET"
	EnvJWTIssuer = "BREEZEPOINT_JWT_ISSUER"

	EnvEventingDriver         = "BREEZEPOINT_EVENTING_DRIVER"
	EnvGCPProjectID           = "BREEZEPOINT_GCP_PROJECT_ID"
	EnvPubSubAssignmentsTopic = "BREEZEPOINT_PUBSUB_ASSIGNMENTS_TOPIC"
	EnvPubSubAssignmentsSub   = "BREEZEPOINT_PUBSUB_ASSIGNMENTS_SUBSCRIPTION"
	EnvKafkaBrokers           = "BREEZEPOINT_KAFKA_BROKERS"
	EnvKafkaAssignmentsTopic  = "BREEZEPOINT_KAFKA_ASSIGNMENTS_TOPIC"

	EnvAssignmentPendingTTL = "BREEZEPOINT_ASSIGNMENT_PENDING_TTL"

	EventingDriverPubSub = "pubsub"
	EventingDriverKafka  = "kafka"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
