// ABOUTME: Voice resource: settings, metadata, synthesis and editing
// ABOUTME: Category gates which mutations a voice accepts
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vocalis-audio/vocalis-go/internal/stream"
)

// Voice categories as reported by the API.
const (
	CategoryPremade   = "premade"
	CategoryCloned    = "cloned"
	CategoryGenerated = "generated"
)

// DefaultModelID is the synthesis model used when none is given.
const DefaultModelID = "eleven_monolingual_v1"

// ErrPremadeVoice is returned for mutations the stock voices refuse.
var ErrPremadeVoice = errors.New("client: premade voices cannot be modified")

// Settings are the tunable synthesis parameters, each in [0, 1].
type Settings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (s Settings) validate() error {
	if s.Stability < 0 || s.Stability > 1 || s.SimilarityBoost < 0 || s.SimilarityBoost > 1 {
		return fmt.Errorf("client: settings must be between 0 and 1, got %+v", s)
	}
	return nil
}

// Sample is an uploaded audio sample attached to a cloned voice.
type Sample struct {
	ID       string `json:"sample_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size_bytes"`
	Hash     string `json:"hash"`
}

// VoiceInfo is the API's metadata record for a voice.
type VoiceInfo struct {
	ID          string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Labels      map[string]string `json:"labels"`
	PreviewURL  string            `json:"preview_url"`
	Samples     []Sample          `json:"samples"`
	Settings    *Settings         `json:"settings,omitempty"`
}

// Voice is a handle on one voice of the linked account.
type Voice struct {
	client   *Client
	id       string
	category string
}

// NewVoice wraps a known voice ID without a metadata round trip. The
// category gate for mutations is fetched lazily when empty.
func NewVoice(c *Client, id, category string) *Voice {
	return &Voice{client: c, id: id, category: category}
}

// VoiceList fetches the metadata records of every voice on the
// account.
func (c *Client) VoiceList(ctx context.Context) ([]VoiceInfo, error) {
	var payload struct {
		Voices []VoiceInfo `json:"voices"`
	}
	if err := c.getJSON(ctx, "/voices", &payload); err != nil {
		return nil, err
	}
	return payload.Voices, nil
}

// Voices lists every voice on the account as usable handles.
func (c *Client) Voices(ctx context.Context) ([]*Voice, error) {
	infos, err := c.VoiceList(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Voice, 0, len(infos))
	for _, info := range infos {
		out = append(out, NewVoice(c, info.ID, info.Category))
	}
	return out, nil
}

// VoiceByName finds the first voice with the given display name.
func (c *Client) VoiceByName(ctx context.Context, name string) (*Voice, error) {
	infos, err := c.VoiceList(ctx)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name == name {
			return NewVoice(c, info.ID, info.Category), nil
		}
	}
	return nil, fmt.Errorf("client: no voice named %q", name)
}

// ID returns the voice identifier.
func (v *Voice) ID() string { return v.id }

// Category returns the voice category, fetching it if unknown.
func (v *Voice) Category(ctx context.Context) (string, error) {
	if v.category != "" {
		return v.category, nil
	}
	info, err := v.Info(ctx)
	if err != nil {
		return "", err
	}
	v.category = info.Category
	return v.category, nil
}

// Info fetches the voice's metadata record.
func (v *Voice) Info(ctx context.Context) (*VoiceInfo, error) {
	var info VoiceInfo
	if err := v.client.getJSON(ctx, "/voices/"+v.id, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Name fetches just the display name.
func (v *Voice) Name(ctx context.Context) (string, error) {
	info, err := v.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.Name, nil
}

// Settings fetches the current synthesis settings.
func (v *Voice) Settings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := v.client.getJSON(ctx, "/voices/"+v.id+"/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EditSettings replaces the synthesis settings.
func (v *Voice) EditSettings(ctx context.Context, s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}
	_, err := v.client.postJSON(ctx, "/voices/"+v.id+"/settings/edit", s)
	return err
}

// PreviewURL returns the sample preview location, if one exists.
func (v *Voice) PreviewURL(ctx context.Context) (string, error) {
	info, err := v.Info(ctx)
	if err != nil {
		return "", err
	}
	if info.PreviewURL == "" {
		return "", fmt.Errorf("client: voice %s has no preview", v.id)
	}
	return info.PreviewURL, nil
}

// PreviewAudio downloads the preview sample.
func (v *Voice) PreviewAudio(ctx context.Context) ([]byte, error) {
	url, err := v.PreviewURL(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download preview: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}

// GenerateOptions tune one synthesis call. Nil settings use the voice's
// stored values.
type GenerateOptions struct {
	Settings *Settings
	ModelID  string
}

func (v *Voice) synthesisPayload(opts GenerateOptions) (map[string]any, error) {
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	payload := map[string]any{"model_id": opts.ModelID}
	if opts.Settings != nil {
		if err := opts.Settings.validate(); err != nil {
			return nil, err
		}
		payload["voice_settings"] = *opts.Settings
	}
	return payload, nil
}

// Generate synthesizes the text and returns the complete audio file.
func (v *Voice) Generate(ctx context.Context, text string, opts GenerateOptions) ([]byte, error) {
	payload, err := v.synthesisPayload(opts)
	if err != nil {
		return nil, err
	}
	payload["text"] = text
	return v.client.postJSON(ctx, "/text-to-speech/"+v.id+"/stream", payload)
}

// Stream synthesizes the text and returns the response as a chunk
// stream for the playback pipeline. Closing the stream tears down the
// connection.
func (v *Voice) Stream(ctx context.Context, text string, opts GenerateOptions) (*HTTPChunkStream, error) {
	payload, err := v.synthesisPayload(opts)
	if err != nil {
		return nil, err
	}
	payload["text"] = text
	resp, err := v.client.postJSONResponse(ctx, "/text-to-speech/"+v.id+"/stream", payload)
	if err != nil {
		return nil, err
	}
	return NewHTTPChunkStream(resp.Body, stream.DefaultChunkBytes()), nil
}

// Edit updates name, description or labels. Unset fields keep their
// current values; the API wants the full record, so it is read first.
type VoiceEdit struct {
	Name        string
	Description string
	Labels      map[string]string
}

// Edit applies the given changes. Premade voices refuse edits.
func (v *Voice) Edit(ctx context.Context, edit VoiceEdit) error {
	if err := v.refuseIfPremade(ctx); err != nil {
		return err
	}
	if len(edit.Labels) > 5 {
		return fmt.Errorf("client: at most 5 labels, got %d", len(edit.Labels))
	}
	info, err := v.Info(ctx)
	if err != nil {
		return err
	}
	fields := map[string]string{
		"name":        info.Name,
		"description": info.Description,
	}
	if edit.Name != "" {
		fields["name"] = edit.Name
	}
	if edit.Description != "" {
		fields["description"] = edit.Description
	}
	labels := info.Labels
	if edit.Labels != nil {
		labels = edit.Labels
	}
	for k, val := range labels {
		fields["labels["+k+"]"] = val
	}
	return v.client.postMultipart(ctx, "/voices/"+v.id+"/edit", fields, nil)
}

// Delete removes the voice from the account. Premade voices refuse.
func (v *Voice) Delete(ctx context.Context) error {
	if err := v.refuseIfPremade(ctx); err != nil {
		return err
	}
	return v.client.del(ctx, "/voices/"+v.id)
}

// Samples lists the uploaded samples of a cloned voice.
func (v *Voice) Samples(ctx context.Context) ([]Sample, error) {
	info, err := v.Info(ctx)
	if err != nil {
		return nil, err
	}
	return info.Samples, nil
}

// AddSamples uploads audio samples, keyed by file name, to a cloned
// voice.
func (v *Voice) AddSamples(ctx context.Context, samples map[string][]byte) error {
	if len(samples) == 0 {
		return errors.New("client: at least one sample required")
	}
	if err := v.refuseIfPremade(ctx); err != nil {
		return err
	}
	name, err := v.Name(ctx)
	if err != nil {
		return err
	}
	return v.client.postMultipart(ctx, "/voices/"+v.id+"/edit", map[string]string{"name": name}, samples)
}

func (v *Voice) refuseIfPremade(ctx context.Context) error {
	cat, err := v.Category(ctx)
	if err != nil {
		return err
	}
	if cat == CategoryPremade {
		return ErrPremadeVoice
	}
	return nil
}
