package ai

import "context"

// Extraction результат анализа мема: текст (извлечённый или сгенерированный)
// и код языка этого текста.
type Extraction struct {
	Text         string
	LanguageCode string
}

// Client интерфейс для извлечения текста из картинки. Все реализации должны быть взаимозаменяемыми.
// png — картинка, уже перекодированная в PNG.
type Client interface {
	ExtractCaption(ctx context.Context, png []byte) (Extraction, error)
}

// systemInstruction системный промпт для модели.
const systemInstruction = "You are an expert meme analyst."

// extractionPrompt основной промпт: извлечь текст дословно, а при его отсутствии —
// сочинить короткий подходящий диалог; вернуть JSON с language_code и text.
const extractionPrompt = `You are an expert meme analyst. Your task is to analyze the provided image.
1. First, determine if the image contains clear, readable text (e.g., captions, dialogue).
2. If it DOES contain text: Extract the text verbatim.
3. If it does NOT contain text (or the text is unreadable): Create a short, funny, meme-style dialogue that fits the scene, characters, and mood.
4. Identify the primary language of the extracted or generated text. Use standard language codes (e.g., 'en' for English, 'zh-tw' for Traditional Chinese, 'ja' for Japanese, 'es' for Spanish).
5. Return your response as a single JSON object with two keys: "language_code" and "text". Do not add any other explanatory text or formatting.

Example for an English meme:
{
    "language_code": "en",
    "text": "This is the text from the meme."
}

Example for a Japanese meme without text:
{
    "language_code": "ja",
    "text": "面白いセリフを生成しました。"
}`
