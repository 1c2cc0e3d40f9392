package patients

// Record holds the fields collected from the caller before insertion. Text
// fields are expected to be cleaned by the validation layer.
type Record struct {
	Name                  string
	Phone                 string
	Email                 string
	Age                   int
	Gender                string
	EmergencyContactName  string
	EmergencyContactPhone string
}

// Identity is the minimal projection returned by the two-factor lookup.
type Identity struct {
	ID   int64
	Name string
}
