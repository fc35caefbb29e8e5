package qqbot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"starchart/config"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Segment ist ein Element einer OneBot-Nachricht.
type Segment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// GroupMessage ist der Body von send_group_msg.
type GroupMessage struct {
	GroupID int64     `json:"group_id"`
	Message []Segment `json:"message"`
}

// Notifier postet Nachrichten über einen OneBot-kompatiblen Bot in eine Gruppe.
type Notifier struct {
	Config   *config.Config
	Logger   *zap.Logger
	client   *resty.Client
	attempts uint
	delay    time.Duration
}

// NewNotifier erstellt einen neuen Gruppen-Notifier.
func NewNotifier(cfg *config.Config, logger *zap.Logger) *Notifier {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	return &Notifier{Config: cfg, Logger: logger, client: client, attempts: 3, delay: 2 * time.Second}
}

// BuildMessage setzt Text und Links zu einer Nachricht zusammen. Links auf
// Bilder werden als image-Segment verschickt, alles andere als Text.
func BuildMessage(groupID int64, text string, links []string) GroupMessage {
	msg := GroupMessage{GroupID: groupID}
	msg.Message = append(msg.Message, Segment{Type: "text", Data: map[string]string{"text": text}})
	for _, link := range links {
		if isImage(link) {
			msg.Message = append(msg.Message, Segment{Type: "image", Data: map[string]string{"file": link}})
			continue
		}
		msg.Message = append(msg.Message, Segment{Type: "text", Data: map[string]string{"text": "\n" + link}})
	}
	return msg
}

func isImage(link string) bool {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif"} {
		if strings.HasSuffix(strings.ToLower(link), ext) {
			return true
		}
	}
	return false
}

// Notify verschickt die Nachricht und wiederholt bei Fehlern.
func (n *Notifier) Notify(ctx context.Context, text string, links []string) error {
	msg := BuildMessage(n.Config.NotifyGroupID, text, links)
	log := n.Logger.With(zap.Int64("group_id", msg.GroupID))

	return retry.Do(
		func() error {
			resp, err := n.client.R().SetContext(ctx).SetBody(msg).Post(n.Config.NotifyURL)
			if err != nil {
				return err
			}
			if resp.StatusCode() != http.StatusOK {
				return fmt.Errorf("send_group_msg failed with status: %d", resp.StatusCode())
			}
			log.Info("Nachricht an Gruppe gesendet.")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn("Senden fehlgeschlagen, neuer Versuch", zap.Uint("attempt", attempt+1), zap.Error(err))
		}),
	)
}
