package events

// Publisher delivers an event to the current subscribers of a topic.
// Delivery is at-most-once: implementations must not retry, persist missed
// events, or block the caller on slow subscribers.
type Publisher interface {
	Publish(topic string, event Event) error
}
