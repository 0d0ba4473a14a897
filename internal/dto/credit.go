package dto

// TopUpRequest adds credit to a client balance.
type TopUpRequest struct {
	ClientID int64 `json:"clientId" validate:"required,gt=0"`
	Amount   int64 `json:"amount" validate:"required,gt=0"`
}

// TopUpResponse returns the resulting balance.
type TopUpResponse struct {
	ClientID      int64 `json:"clientId"`
	CreditBalance int64 `json:"creditBalance"`
}
