package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// AnomalyAlertMessage carries one flagged expense to the alert worker.
type AnomalyAlertMessage struct {
	UserID              int64           `json:"userId"`
	TransactionID       string          `json:"transactionId"`
	Amount              decimal.Decimal `json:"amount"`
	CategoryName        string          `json:"categoryName"`
	Date                string          `json:"date"`
	CategoryAverage     decimal.Decimal `json:"categoryAverage"`
	DeviationPercentage float64         `json:"deviationPercentage"`
	Message             string          `json:"message"`
	Timestamp           time.Time       `json:"timestamp"`
}

func NewAnomalyAlertMessage(userID int64, a core.AnomalyAlert) *AnomalyAlertMessage {
	return &AnomalyAlertMessage{
		UserID:              userID,
		TransactionID:       a.TransactionID,
		Amount:              a.Amount,
		CategoryName:        a.CategoryName,
		Date:                a.Date,
		CategoryAverage:     a.CategoryAverage,
		DeviationPercentage: a.DeviationPercentage,
		Message:             a.Message,
		Timestamp:           time.Now(),
	}
}

// Alert converts the message back into the domain value.
func (m *AnomalyAlertMessage) Alert() core.AnomalyAlert {
	return core.AnomalyAlert{
		TransactionID:       m.TransactionID,
		Amount:              m.Amount,
		CategoryName:        m.CategoryName,
		Date:                m.Date,
		CategoryAverage:     m.CategoryAverage,
		DeviationPercentage: m.DeviationPercentage,
		Message:             m.Message,
	}
}

func (m *AnomalyAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnomalyAlertMessageFromJSON(data []byte) (*AnomalyAlertMessage, error) {
	var msg AnomalyAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID <= 0 || msg.TransactionID == "" {
		return nil, core.ErrInvalidUser
	}
	return &msg, nil
}
