package cart

import "errors"

var ErrEmpty = errors.New("cart is empty")

type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	UserID string `json:"userId"`
	Lines  []Line `json:"items"`
}

type SetItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gte=0,max=100"`
}
