package customer

import "time"

type Customer struct {
	ID        string    `json:"customerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCustomer(id, name string) *Customer {
	return &Customer{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now(),
	}
}

// SeedCustomers is the fixed set created at bootstrap. Customers have no
// create endpoint.
func SeedCustomers() []*Customer {
	return []*Customer{
		NewCustomer("CUST001", "Amit Sharma"),
		NewCustomer("CUST002", "Priya Singh"),
		NewCustomer("CUST003", "Rahul Verma"),
	}
}
