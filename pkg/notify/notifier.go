package notify

// NotificationData is one composed outbound message.
type NotificationData struct {
	To       []string          // Primary recipients
	Cc       []string          // Optional CC recipients (e.g. the acting identity)
	Subject  string            // Subject line
	Body     string            // Plain-text body
	HTMLBody string            // Optional HTML alternative
	Headers  map[string]string // Additional message headers
}

// Notifier delivers a composed message. Delivery is fire-and-forget from
// the engine's point of view: errors are logged by the caller and never
// retried, and delivery success is not observed.
type Notifier interface {
	Send(notification NotificationData) error
}
