//go:build !linux

package notify

// stubNotifier swallows notifications on platforms without a desktop bus.
type stubNotifier struct{}

// New returns a no-op notifier on non-Linux platforms. The action
// callback is never invoked.
func New(_ func(id uint32, key string)) (Notifier, error) {
	return &stubNotifier{}, nil
}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) {
	return 0, nil
}

func (s *stubNotifier) Close(_ uint32) error {
	return nil
}
