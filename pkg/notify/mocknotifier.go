package notify

// MockNotifier records sent notifications for tests.
type MockNotifier struct {
	SentNotifications []NotificationData
	Err               error // returned by Send when non-nil
}

func (m *MockNotifier) Send(notification NotificationData) error {
	if m.Err != nil {
		return m.Err
	}
	m.SentNotifications = append(m.SentNotifications, notification)
	return nil
}
