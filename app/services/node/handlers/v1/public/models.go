package public

import "github.com/gorpcoin/ledger/foundation/blockchain/database"

type difficulty struct {
	Length     int   `json:"length"`
	Difficulty uint8 `json:"difficulty"`
}

type validity struct {
	ID          string `json:"id"`
	OutputTotal uint64 `json:"output_total"`
	Valid       bool   `json:"valid"`
}

type status struct {
	Status string `json:"status"`
}

type block struct {
	database.BlockData
	Difficulty uint8 `json:"difficulty"`
}
