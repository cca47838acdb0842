package eventhub

const (
	EventNameTransactions = "Transactions"
	EventNameBlocks       = "Blocks"
)

// EventMsg is the envelope an EventHub actor receives and fans out to every
// observer registered on Name.
type EventMsg struct {
	Name string
	Data interface{}
}
