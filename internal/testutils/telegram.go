package testutils

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// FakeBotAPI записывает вызовы Bot API вместо отправки в Telegram
type FakeBotAPI struct {
	mu        sync.Mutex
	Sent      []*bot.SendMessageParams
	Edited    []*bot.EditMessageTextParams
	Answers   []*bot.AnswerCallbackQueryParams
	Documents []*bot.SendDocumentParams

	// SendErr возвращается из SendMessage, если задан
	SendErr error
	// EditErr возвращается из EditMessageText, если задан
	EditErr error
}

func (f *FakeBotAPI) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.Sent = append(f.Sent, params)
	return &models.Message{ID: len(f.Sent), Text: params.Text}, nil
}

func (f *FakeBotAPI) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EditErr != nil {
		return nil, f.EditErr
	}
	f.Edited = append(f.Edited, params)
	return &models.Message{ID: params.MessageID, Text: params.Text}, nil
}

func (f *FakeBotAPI) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, params)
	return true, nil
}

func (f *FakeBotAPI) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Documents = append(f.Documents, params)
	return &models.Message{ID: len(f.Documents)}, nil
}

// LastSent возвращает последнее отправленное сообщение или nil
func (f *FakeBotAPI) LastSent() *bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return nil
	}
	return f.Sent[len(f.Sent)-1]
}

// LastAnswer возвращает текст последнего ответа на callback query
func (f *FakeBotAPI) LastAnswer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Answers) == 0 {
		return ""
	}
	return f.Answers[len(f.Answers)-1].Text
}

// Reset очищает записанные вызовы
func (f *FakeBotAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent, f.Edited, f.Answers, f.Documents = nil, nil, nil, nil
}
