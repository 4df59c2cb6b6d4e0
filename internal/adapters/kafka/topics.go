package kafka

// Topic definitions for studio event streaming
const (
	// Write-path events from the query layer
	TopicClientEvents = "studio.client_events"
	TopicOrderEvents  = "studio.order_events"

	// Inbound assistant queries
	TopicQueryEvents = "studio.query_events"

	// Language model usage, consumed into ClickHouse
	TopicAIUsage = "studio.ai_usage"
)

// AllTopics lists every topic the service produces to
func AllTopics() []string {
	return []string{TopicClientEvents, TopicOrderEvents, TopicQueryEvents, TopicAIUsage}
}
