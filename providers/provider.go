package providers

import "context"

// Provider ist das Interface für eine Quelle von Ranglisten-Dokumenten.
type Provider interface {
	// Fetch lädt das Dokument eines Containers (z.B. "231343_<uid>_<chart>") als rohes JSON.
	Fetch(ctx context.Context, containerID string) ([]byte, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "weibo").
	Name() string
}

// Notifier verschickt eine Nachricht über einen fertigen Report.
type Notifier interface {
	Notify(ctx context.Context, text string, links []string) error
}
