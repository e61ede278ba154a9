package directory

type Employee struct {
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Title      string `json:"title"`
	Office     string `json:"office"`
	Bio        string `json:"bio"`
}

type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	Office    string `json:"office"`
	Bio       string `json:"bio"`
}

const (
	RoleAdmin     = "ADMIN"
	RoleFinance   = "FINANCE"
	RoleExecutive = "EXECUTIVE"
	RoleEmployee  = "EMPLOYEE"
)
