package checkoutevents

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutCompletedName = TopicName + ".completed"
)

type CheckoutStarted struct {
	ProviderName  string
	SessionID     string
	AmountInCents int64
	Currency      string
	ItemCount     int
	CustomerEmail string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.SessionID
}

type CheckoutCompleted struct {
	ProviderName  string
	SessionID     string
	AmountInCents int64
	Currency      string
	PaymentStatus string
	CustomerEmail string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.SessionID
}
