package handler

import (
	"time"

	"todolists/internal/todo/models"
)

type ListSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"item_count"`
}

type ItemResponse struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type ListResponse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Items []ItemResponse `json:"items"`
}

type CreateListResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateItemResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type DummyResponse struct {
	ID   string    `json:"id"`
	When time.Time `json:"when"`
}

func toSummaryResponse(s models.ListSummary) ListSummaryResponse {
	return ListSummaryResponse{ID: s.ID.String(), Name: s.Name, ItemCount: s.ItemCount}
}

func toItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResponse{ID: it.ID.String(), Label: it.Label, Checked: it.Checked})
	}
	return out
}

func toListResponse(l *models.List) ListResponse {
	return ListResponse{ID: l.ID.String(), Name: l.Name, Items: toItemResponses(l.Items)}
}
