package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT full_name
    FROM financial_data.employee
    ORDER BY full_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) ListAll(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, first_name, last_name, full_name, email, role,
           COALESCE(title, ''), COALESCE(office, ''), COALESCE(bio, '')
    FROM financial_data.employee
    ORDER BY last_name, first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.EmployeeID, &emp.FirstName, &emp.LastName, &emp.FullName, &emp.Email, &emp.Role, &emp.Title, &emp.Office, &emp.Bio); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) GetProfile(ctx context.Context, email string) (Profile, error) {
	var profile Profile
	err := s.DB.QueryRow(ctx, `
    SELECT first_name, last_name, email, COALESCE(title, ''), COALESCE(office, ''), COALESCE(bio, '')
    FROM financial_data.employee
    WHERE email = $1
  `, email).Scan(&profile.FirstName, &profile.LastName, &profile.Email, &profile.Title, &profile.Office, &profile.Bio)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return profile, err
}

func (s *Store) UpdateProfile(ctx context.Context, email, title, office, bio string) (Profile, error) {
	var profile Profile
	err := s.DB.QueryRow(ctx, `
    UPDATE financial_data.employee
    SET title = $1, office = $2, bio = $3
    WHERE email = $4
    RETURNING first_name, last_name, email, COALESCE(title, ''), COALESCE(office, ''), COALESCE(bio, '')
  `, title, office, bio, email).Scan(&profile.FirstName, &profile.LastName, &profile.Email, &profile.Title, &profile.Office, &profile.Bio)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return profile, err
}

func (s *Store) RoleByEmail(ctx context.Context, email string) (string, error) {
	var role string
	err := s.DB.QueryRow(ctx, `
    SELECT role
    FROM financial_data.employee
    WHERE email = $1
  `, email).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return role, err
}

func (s *Store) IDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id
    FROM financial_data.employee
    WHERE email = $1
  `, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Store) IDByFullName(ctx context.Context, fullName string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id
    FROM financial_data.employee
    WHERE full_name = $1
  `, fullName).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}
