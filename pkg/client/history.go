// ABOUTME: Generation history resources
// ABOUTME: Listing, audio retrieval and deletion of past generations
package client

import (
	"context"
)

// HistoryItem is one past generation on the account.
type HistoryItem struct {
	client *Client

	ID            string `json:"history_item_id"`
	VoiceID       string `json:"voice_id"`
	VoiceName     string `json:"voice_name"`
	Text          string `json:"text"`
	DateUnix      int64  `json:"date_unix"`
	CharCountFrom int64  `json:"character_count_change_from"`
	CharCountTo   int64  `json:"character_count_change_to"`
	ContentType   string `json:"content_type"`
	State         string `json:"state"`
}

// CharCount is the character cost of this generation.
func (h *HistoryItem) CharCount() int64 {
	return h.CharCountTo - h.CharCountFrom
}

// History lists the account's past generations, newest first.
func (c *Client) History(ctx context.Context) ([]*HistoryItem, error) {
	var payload struct {
		History []*HistoryItem `json:"history"`
	}
	if err := c.getJSON(ctx, "/history", &payload); err != nil {
		return nil, err
	}
	for _, item := range payload.History {
		item.client = c
	}
	return payload.History, nil
}

// Audio downloads the generated audio file for this item.
func (h *HistoryItem) Audio(ctx context.Context) ([]byte, error) {
	return h.client.get(ctx, "/history/"+h.ID+"/audio")
}

// Delete removes the item from the history.
func (h *HistoryItem) Delete(ctx context.Context) error {
	return h.client.del(ctx, "/history/"+h.ID)
}
