package handler

import "intake/internal/checklist/models"

// ResolveResponse is the HTTP response for POST /checklist/resolve.
type ResolveResponse struct {
	Items []ItemResponse `json:"items"`
}

// ItemResponse is one resolved checklist entry.
type ItemResponse struct {
	DocType     string `json:"doc_type"`
	DisplayName string `json:"display_name"`
	Required    bool   `json:"required"`
}

// FromItems converts resolved checklist items to the HTTP response. An empty
// resolution is a valid checklist, not an error, so Items is always present.
func FromItems(items []models.ChecklistItem) *ResolveResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ItemResponse{
			DocType:     item.DocType,
			DisplayName: item.DisplayName,
			Required:    item.Required,
		})
	}
	return &ResolveResponse{Items: out}
}
