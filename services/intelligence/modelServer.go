// File: service/ai/modelServer.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"frontdesk/models"
)

// ModelServerClient talks to an external inference server for slot detection
// and extraction. Requests carry a 5s client timeout so a hung model never
// stalls a turn phase indefinitely.
type ModelServerClient struct {
	baseURL string
	client  *http.Client
}

func NewModelServerClient(baseURL string) *ModelServerClient {
	return &ModelServerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type detectRequest struct {
	Utterance string `json:"utterance"`
	Slot      string `json:"slot"`
}

type detectResponse struct {
	Confidence float64 `json:"confidence"`
	Detected   bool    `json:"detected"`
}

type extractRequest struct {
	Utterance string   `json:"utterance"`
	Slots     []string `json:"slots"`
}

type extractResponse struct {
	Extractions []struct {
		Slot       string  `json:"slot"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
		Found      bool    `json:"found"`
	} `json:"extractions"`
}

func (m *ModelServerClient) Detect(ctx context.Context, utterance, slot string) (float64, bool, error) {
	var resp detectResponse
	if err := m.post(ctx, "/detect", detectRequest{Utterance: utterance, Slot: slot}, &resp); err != nil {
		return 0, false, err
	}
	return resp.Confidence, resp.Detected, nil
}

func (m *ModelServerClient) Extract(ctx context.Context, utterance string, slots []string) ([]models.SlotExtraction, error) {
	var resp extractResponse
	if err := m.post(ctx, "/extract", extractRequest{Utterance: utterance, Slots: slots}, &resp); err != nil {
		return nil, err
	}
	results := make([]models.SlotExtraction, 0, len(resp.Extractions))
	for _, ex := range resp.Extractions {
		results = append(results, models.SlotExtraction{
			Slot:       ex.Slot,
			Value:      ex.Value,
			Confidence: ex.Confidence,
			Found:      ex.Found,
			Method:     "model",
		})
	}
	return results, nil
}

func (m *ModelServerClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response failed: %w", err)
	}
	return nil
}
