package broker

// EventType enumerates the event-channel signal kinds the exchange
// connector delivers (spec.md §6).
type EventType int

const (
	EventOrderOpened EventType = iota
	EventOrderDeleted
	EventOrderCanceled
	EventOrderUpdated
	EventOrderTraded
	EventPositionDeleted
)

// Event is the normalized order/position notification delivered to a
// trade's state machine. Only the fields relevant to EventType are set;
// correlation uses RefOrderID to match a preliminary acknowledgement, and
// OrderID/PositionID for all events after the first.
type Event struct {
	Type EventType

	OrderID    string
	PositionID string
	RefOrderID string

	Timestamp int64

	StopLoss   *float64
	TakeProfit *float64

	Filled            *float64
	CumulativeFilled  *float64
	AvgPrice          *float64
	ExecPrice         *float64
}
