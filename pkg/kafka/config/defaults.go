package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultEnabled      = false

	DefaultIntakeTopic   = "deca.submissions.intake"
	DefaultAcceptedTopic = "deca.submissions.accepted"
	DefaultReviewTopic   = "deca.submissions.review"
	DefaultDLQTopic      = "deca.submissions.dlq"
	DefaultConsumerGroup = "deca-intake-worker"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultConsumerStartOffset       = -2 // oldest; a new group must not skip queued submissions
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
