package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram allows at most this many items per media group.
const mediaGroupSize = 10

// bot is the part of tgbotapi.BotAPI the relay uses.
type bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Telegram posts the record as a message to one chat and its files as
// media groups. Only file ids are indexed. Download URLs carry the bot
// token, so files are read back through Open and never handed out.
type Telegram struct {
	bot    bot
	client *http.Client
	chatID int64
	index  index
}

// NewTelegram connects the bot. Every API call and download shares one
// client bounded by timeout.
func NewTelegram(token, apiEndpoint string, chatID int64, timeout time.Duration, store database.Store) (*Telegram, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	return newTelegram(api, client, chatID, store), nil
}

func newTelegram(b bot, client *http.Client, chatID int64, store database.Store) *Telegram {
	return &Telegram{bot: b, client: client, chatID: chatID, index: index{store}}
}

func (*Telegram) Name() string { return NameTelegram }

func (t *Telegram) Send(ctx context.Context, rec Record, label string, files []File, p *models.RelayProgress) error {
	if !p.CaptionSent {
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, rec.Caption(label))); err != nil {
			return fmt.Errorf("telegram caption: %w", err)
		}
		p.CaptionSent = true
	}

	ordered := deliveryOrder(files)
	for p.FilesSent < len(ordered) {
		if err := ctx.Err(); err != nil {
			return err
		}
		group := nextGroup(ordered, p.FilesSent)
		sent, err := t.sendGroup(group)
		if err != nil {
			return err
		}
		p.FilesSent += len(group)
		p.Items = append(p.Items, sent...)
	}
	if len(p.Items) == 0 {
		return nil
	}
	if err := t.index.add(ctx, rec.ID, label, p.Items); err != nil {
		return err
	}
	p.Items = nil
	return nil
}

// deliveryOrder puts photos before documents, keeping their order.
func deliveryOrder(files []File) []File {
	out := make([]File, 0, len(files))
	for _, f := range files {
		if f.IsImage() {
			out = append(out, f)
		}
	}
	for _, f := range files {
		if !f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}

// nextGroup is the media group starting at start. Photos and documents
// never share a group.
func nextGroup(files []File, start int) []File {
	end := min(start+mediaGroupSize, len(files))
	for i := start + 1; i < end; i++ {
		if files[i].IsImage() != files[start].IsImage() {
			end = i
			break
		}
	}
	return files[start:end]
}

func (t *Telegram) sendGroup(files []File) ([]models.MediaPointer, error) {
	var msgs []tgbotapi.Message
	if len(files) == 1 {
		var c tgbotapi.Chattable
		fb := tgbotapi.FileBytes{Name: files[0].Name, Bytes: files[0].Data}
		if files[0].IsImage() {
			c = tgbotapi.NewPhoto(t.chatID, fb)
		} else {
			c = tgbotapi.NewDocument(t.chatID, fb)
		}
		msg, err := t.bot.Send(c)
		if err != nil {
			return nil, fmt.Errorf("telegram upload %s: %w", files[0].Name, err)
		}
		msgs = []tgbotapi.Message{msg}
	} else {
		media := make([]any, 0, len(files))
		for _, f := range files {
			fb := tgbotapi.FileBytes{Name: f.Name, Bytes: f.Data}
			if f.IsImage() {
				media = append(media, tgbotapi.NewInputMediaPhoto(fb))
			} else {
				media = append(media, tgbotapi.NewInputMediaDocument(fb))
			}
		}
		var err error
		msgs, err = t.bot.SendMediaGroup(tgbotapi.NewMediaGroup(t.chatID, media))
		if err != nil {
			return nil, fmt.Errorf("telegram media group: %w", err)
		}
	}

	now := time.Now().UTC()
	items := make([]models.MediaPointer, 0, len(msgs))
	for i, m := range msgs {
		p := models.MediaPointer{Relay: NameTelegram, CreatedAt: now}
		if i < len(files) {
			p.FileName = files[i].Name
			p.FileType = files[i].ContentType
		}
		switch {
		case len(m.Photo) > 0:
			p.ID = m.Photo[len(m.Photo)-1].FileID
			p.ThumbID = m.Photo[0].FileID
		case m.Document != nil:
			p.ID = m.Document.FileID
		default:
			continue
		}
		items = append(items, p)
	}
	return items, nil
}

// Media lists the indexed files. URLs stay empty; see Open.
func (t *Telegram) Media(ctx context.Context, recordID string) ([]models.MediaPointer, error) {
	return t.index.list(ctx, recordID)
}

// Open resolves a fresh download URL for an indexed file and streams it.
func (t *Telegram) Open(ctx context.Context, recordID string, n int, thumb bool) (Download, error) {
	item, err := t.index.item(ctx, recordID, n)
	if err != nil {
		return Download{}, err
	}
	fileID := item.ID
	if thumb && item.ThumbID != "" {
		fileID = item.ThumbID
	}
	link, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return Download{}, fmt.Errorf("telegram file %s: %w", item.FileName, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Download{}, fmt.Errorf("telegram file %s: bad download request", item.FileName)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		// Drop the URL from the error; it carries the bot token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return Download{}, fmt.Errorf("telegram download %s: %w", item.FileName, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return Download{}, fmt.Errorf("telegram download %s: status %d", item.FileName, resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = item.FileType
	}
	return Download{Body: resp.Body, ContentType: ct, Size: resp.ContentLength}, nil
}
