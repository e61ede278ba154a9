package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type seedEmployee struct {
	FirstName string
	LastName  string
	Email     string
	Role      string
	Title     string
	Office    string
}

var demoEmployees = []seedEmployee{
	{"Avery", "Crane", "avery.crane@corvid.example", "EXECUTIVE", "Chief Financial Officer", "Huntsville"},
	{"Jordan", "Pike", "jordan.pike@corvid.example", "FINANCE", "Finance Analyst", "Huntsville"},
	{"Riley", "Marsh", "riley.marsh@corvid.example", "EMPLOYEE", "Systems Engineer", "Colorado Springs"},
	{"Casey", "Wren", "casey.wren@corvid.example", "ADMIN", "Operations Manager", "Huntsville"},
}

// Seed inserts a small demo directory for development environments. Every
// insert is idempotent on email.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, emp := range demoEmployees {
		_, err := pool.Exec(ctx, `
      INSERT INTO financial_data.employee (first_name, last_name, full_name, email, role, title, office, bio)
      VALUES ($1, $2, $3, $4, $5, $6, $7, '')
      ON CONFLICT (email) DO NOTHING
    `, emp.FirstName, emp.LastName, emp.LastName+", "+emp.FirstName, emp.Email, emp.Role, emp.Title, emp.Office)
		if err != nil {
			return err
		}
	}
	return nil
}
