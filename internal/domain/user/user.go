package user

// Status is the lifecycle status of a subscriber.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Frequency tags how often a subscriber wants a quote. Only daily is delivered.
type Frequency string

const (
	FrequencyDaily Frequency = "daily"
)

// User represents a subscriber in the system.
// Corresponds to the 'users' table.
type User struct {
	ID        int64
	Name      string
	Email     string // unique
	Status    Status
	Frequency Frequency
}

