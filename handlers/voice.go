package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"frontdesk/config"
	"frontdesk/models"
	"frontdesk/services/session"
	"frontdesk/utils"
)

const (
	MaxDurationSeconds = 60              // 1 minute maximum
	MaxFileSize        = 5 * 1024 * 1024 // 5MB (conservative buffer)
	AllowedExtension   = ".wav"
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}

	var header waveHeader
	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	return &header, nil
}

// recognizerReady means the upload already matches what the recognizer wants:
// 16kHz mono 16-bit PCM. Anything else goes through ffmpeg first.
func recognizerReady(h *waveHeader) bool {
	return h != nil &&
		h.AudioFormat == 1 &&
		h.SampleRate == 16000 &&
		h.NumChannels == 1 &&
		h.BitsPerSample == 16
}

func convertAudio(inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

// VoiceHandler accepts a WAV upload, transcribes it with Google Speech-to-Text
// and feeds the transcript through the same turn path as a typed sentence.
type VoiceHandler struct {
	Sessions *session.Controller
	Logger   *zap.Logger
}

func NewVoiceHandler(sessions *session.Controller, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		Sessions: sessions,
		Logger:   logger,
	}
}

func (h *VoiceHandler) VoiceSessionHandler(c *gin.Context) {
	id := c.Param("session_id")

	// Resolve the session before paying for transcription.
	if _, err := h.Sessions.Get(c.Request.Context(), id); err != nil {
		if err == session.ErrSessionNotFound {
			utils.JSONDetail(c, http.StatusNotFound, "Session not found")
			return
		}
		utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	language := c.DefaultPostForm("language", "en-US")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONDetail(c, http.StatusBadRequest, "Audio file is required")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != AllowedExtension {
		utils.JSONDetail(c, http.StatusBadRequest, fmt.Sprintf("Invalid file type: expected %s, got %s", AllowedExtension, ext))
		return
	}

	tempInput, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		utils.JSONDetail(c, http.StatusInternalServerError, "Failed to create temp file")
		return
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()

	if _, err := io.Copy(tempInput, io.LimitReader(file, MaxFileSize)); err != nil {
		utils.JSONDetail(c, http.StatusInternalServerError, "Failed to save audio file")
		return
	}

	uploaded, err := os.ReadFile(tempInput.Name())
	if err != nil {
		utils.JSONDetail(c, http.StatusInternalServerError, "Failed to read audio file")
		return
	}

	audioData := uploaded
	if wav, err := parseWaveHeader(uploaded); err != nil || !recognizerReady(wav) {
		tempOutput, err := os.CreateTemp("", "converted-*.wav")
		if err != nil {
			utils.JSONDetail(c, http.StatusInternalServerError, "Failed to create output temp file")
			return
		}
		defer os.Remove(tempOutput.Name())
		defer tempOutput.Close()

		if err := convertAudio(tempInput.Name(), tempOutput.Name()); err != nil {
			utils.JSONDetail(c, http.StatusBadRequest, fmt.Sprintf("Audio conversion failed: %v", err))
			return
		}

		audioData, err = os.ReadFile(tempOutput.Name())
		if err != nil {
			utils.JSONDetail(c, http.StatusInternalServerError, "Failed to read converted audio")
			return
		}
	}

	ctx := c.Request.Context()
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile))
	if err != nil {
		utils.JSONDetail(c, http.StatusInternalServerError, "Failed to initialize speech client")
		return
	}
	defer client.Close()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   16000,
			LanguageCode:      language,
			AudioChannelCount: 1, // Mono
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audioData,
			},
		},
	}

	resp, err := client.Recognize(ctx, req)
	if err != nil {
		utils.JSONDetail(c, http.StatusInternalServerError, fmt.Sprintf("Speech recognition failed: %v", err))
		return
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}

	sentence := strings.TrimSpace(transcript.String())
	if sentence == "" {
		utils.JSONDetail(c, http.StatusUnprocessableEntity, "No speech recognized in the audio")
		return
	}

	h.Logger.Debug("voice turn transcribed",
		zap.String("sessionID", id),
		zap.Int("chars", len(sentence)),
	)

	envelope, err := h.Sessions.Update(ctx, id, sentence)
	if err != nil {
		if err == session.ErrSessionNotFound {
			utils.JSONDetail(c, http.StatusNotFound, "Session not found")
			return
		}
		utils.JSONDetail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.VoiceEnvelope{
		SessionEnvelope: envelope,
		Transcription:   sentence,
	})
}
