package model

import "main/internal/model/enum"

// Operation records one completed buy or sell trade. It is created exactly
// once per successful portfolio mutation and never changed afterwards.
type Operation struct {
	ID     string             `json:"id"`
	Action enum.OperationKind `json:"action"`
	Name   string             `json:"name"`
	Shares int                `json:"shares"`
	Price  float64            `json:"price"`
	Quote  Quote              `json:"quote"`
	Cash   float64            `json:"cash"`
	Owned  int                `json:"owned"`
	Date   int64              `json:"date"`
}
