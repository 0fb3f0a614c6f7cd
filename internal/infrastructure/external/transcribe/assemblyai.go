// Package transcribe implements the Transcriber collaborators: a hosted
// AssemblyAI variant and a plain HTTP variant for self-hosted deployments.
package transcribe

import (
	"context"
	"fmt"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// AssemblyAITranscriber transcribes recordings through the hosted
// AssemblyAI API, polling until the transcript is ready.
type AssemblyAITranscriber struct {
	client *aai.Client
	logger *zap.Logger
}

// NewAssemblyAITranscriber creates an AssemblyAI-backed transcriber.
func NewAssemblyAITranscriber(cfg *config.TranscribeConfig, logger *zap.Logger) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{
		client: aai.NewClient(cfg.AssemblyAIKey),
		logger: logger,
	}
}

// Transcribe submits the audio URL and waits for the completed transcript.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if t.logger != nil {
		t.logger.Info("🎙️ Submitting recording to AssemblyAI")
	}

	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, audioURL, &aai.TranscriptOptionalParams{})
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := ""
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai transcription error: %s", msg)
	}
	if transcript.Text == nil {
		return "", fmt.Errorf("assemblyai returned no transcript text")
	}

	return *transcript.Text, nil
}
