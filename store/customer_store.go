package store

import (
	"context"
	"fmt"

	"dairyflow-backend/models"

	"github.com/google/uuid"
)

func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.conn(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.conn(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// FindCustomerByPhone returns ErrNotFound when no customer uses the number.
func (s *Store) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.conn(ctx).Where("phone = ?", phone).First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context, activeOnly bool) ([]models.Customer, error) {
	query := s.conn(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.conn(ctx).Save(customer).Error; err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// DeleteCustomer soft deletes the customer. Bills and overrides are kept.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	result := s.conn(ctx).Where("id = ?", id).Delete(&models.Customer{})
	if result.Error != nil {
		return fmt.Errorf("delete customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
