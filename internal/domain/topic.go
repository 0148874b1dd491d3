package domain

// Topic is the closed set of webhook topics the pipeline processes. Anything
// outside the set parses to TopicIgnored: the sender retries on non-success
// responses, so topics we deliberately do not handle must still be
// acknowledged or they would redeliver forever.
type Topic int

const (
	TopicIgnored Topic = iota
	TopicProductCreate
	TopicCustomerCreate
	TopicOrderCreate
)

// ParseTopic maps the transport-level topic header to a Topic.
func ParseTopic(s string) Topic {
	switch s {
	case "products/create":
		return TopicProductCreate
	case "customers/create":
		return TopicCustomerCreate
	case "orders/create":
		return TopicOrderCreate
	default:
		return TopicIgnored
	}
}

// String returns the canonical topic name, suitable as a bounded metric label.
func (t Topic) String() string {
	switch t {
	case TopicProductCreate:
		return "products/create"
	case TopicCustomerCreate:
		return "customers/create"
	case TopicOrderCreate:
		return "orders/create"
	default:
		return "ignored"
	}
}
