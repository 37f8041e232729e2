package messaging

// TopicOrderCreated carries domain.OrderCreatedEvent payloads keyed by
// order id.
const TopicOrderCreated = "order.created"
