package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// CircuitOpenError represents a call rejected because the circuit breaker is open.
	CircuitOpenError ErrorCode = "circuit_open"
	// QualityRejectedError represents a tick rejected by the quality gate.
	// This is a normal filtering outcome, logged at low severity, never a fault.
	QualityRejectedError ErrorCode = "quality_rejected"
	// OutOfOrderBarError represents a tick arriving for an already completed bucket.
	OutOfOrderBarError ErrorCode = "out_of_order_bar"
	// PersistenceFailureError represents a failed bar write; retried with backoff
	// at the persistence-adapter boundary.
	PersistenceFailureError ErrorCode = "persistence_failure"
	// DistributionFailureError represents a failed delivery to one subscriber.
	DistributionFailureError ErrorCode = "distribution_failure"
	// CollectorParseError represents an upstream message that could not be normalized.
	CollectorParseError ErrorCode = "collector_parse_error"

	// PostgresConfigError represents an invalid Postgres configuration.
	PostgresConfigError ErrorCode = "postgres_config_error"
	// PostgresConnectionError represents an error connecting to Postgres.
	PostgresConnectionError ErrorCode = "postgres_connection_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisDelError represents an error when deleting keys from Redis.
	RedisDelError ErrorCode = "redis_del_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_ping_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisSubscribeError represents an error when subscribing to channels in Redis.
	RedisSubscribeError ErrorCode = "redis_subscribe_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
)

// Severity represents the severity level of an error.
type Severity string

const (
	// SeverityCritical indicates a critical error that requires immediate attention.
	SeverityCritical Severity = "critical"
	// SeverityHigh indicates a high severity error that should be addressed promptly.
	SeverityHigh Severity = "high"
	// SeverityMedium indicates a medium severity error that should be addressed in due course.
	SeverityMedium Severity = "medium"
	// SeverityLow indicates a low severity error that can be addressed at a later time.
	SeverityLow Severity = "low"
)

// Category represents the category of an error.
type Category string

const (
	// CategoryDatabase indicates an error related to database operations.
	CategoryDatabase Category = "database"
	// CategoryNetwork indicates an error related to network operations.
	CategoryNetwork Category = "network"
	// CategoryValidation indicates an error related to validation of input data.
	CategoryValidation Category = "validation"
	// CategoryBusinessLogic indicates an error related to business logic processing.
	CategoryBusinessLogic Category = "business_logic"
	// CategoryExternal indicates an error related to external services or APIs.
	CategoryExternal Category = "external"
	// CategoryUnknown indicates an unknown error category.
	CategoryUnknown Category = "unknown"
)
