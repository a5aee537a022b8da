package dto

type AdvanceOrderStatusDTO struct {
	Status string `json:"status"`
}

type FinalizeDraftDTO struct {
	DraftID uint `json:"draft_id"`
}
