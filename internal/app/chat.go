package app

import (
	"fmt"

	"myanalyst/pkg/analysis"
	"myanalyst/pkg/domain"
)

// Fallbacks for audio uploads that arrive without a filename or content
// type. Mobile recorders commonly omit both.
const (
	defaultAudioFilename    = "audio.m4a"
	defaultAudioContentType = "audio/mp4"
)

// AnswerTextQuestion answers a question about an existing report and
// records the turn. A chat row is only written once a non-empty answer has
// been obtained.
func (a *App) AnswerTextQuestion(reportID int, question string) (domain.Chat, error) {
	report, ok, err := a.store.GetReport(reportID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return domain.Chat{}, ErrReportNotFound
	}

	answer, err := a.analysis.AnswerQuestion(report.Content, question)
	if err != nil {
		return domain.Chat{}, upstream("answer question", err)
	}

	chat, err := a.store.AppendChat(domain.Chat{
		ReportID: report.ID,
		Question: question,
		Answer:   answer,
	})
	if err != nil {
		return domain.Chat{}, fmt.Errorf("save chat: %w", err)
	}
	return chat, nil
}

// AnswerAudioQuestion transcribes an uploaded audio question, answers it
// against an existing report, and records the turn. The transcription is
// authoritative and is returned to the caller alongside the answer.
func (a *App) AnswerAudioQuestion(reportID int, audio analysis.AudioFile) (domain.Chat, error) {
	report, ok, err := a.store.GetReport(reportID)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return domain.Chat{}, ErrReportNotFound
	}
	if len(audio.Data) == 0 {
		return domain.Chat{}, ErrAudioRequired
	}
	if audio.Filename == "" {
		audio.Filename = defaultAudioFilename
	}
	if audio.ContentType == "" {
		audio.ContentType = defaultAudioContentType
	}

	question, answer, err := a.analysis.TranscribeAndAnswer(report.Content, audio)
	if err != nil {
		return domain.Chat{}, upstream("transcribe question", err)
	}

	chat, err := a.store.AppendChat(domain.Chat{
		ReportID: report.ID,
		Question: question,
		Answer:   answer,
	})
	if err != nil {
		return domain.Chat{}, fmt.Errorf("save chat: %w", err)
	}
	return chat, nil
}

// ListChatHistory returns all chat turns for an existing report in
// insertion order.
func (a *App) ListChatHistory(reportID int) ([]domain.Chat, error) {
	_, ok, err := a.store.GetReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if !ok {
		return nil, ErrReportNotFound
	}
	chats, err := a.store.ListChatsByReport(reportID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}
