package ai

import "context"

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) ExtractCaption(_ context.Context, _ []byte) (Extraction, error) {
	return Extraction{Text: "запрос получен", LanguageCode: "ru"}, nil
}
