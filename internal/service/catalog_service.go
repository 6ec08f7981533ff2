package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
)

// CatalogService manages the reference data that ledger entries, recipes
// and orders point at.
type CatalogService interface {
	CreateItem(ctx context.Context, owner uuid.UUID, req dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error)
	// CreateDefaultItem registers an item visible to every owner.
	CreateDefaultItem(ctx context.Context, req dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error)
	ListItems(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.InventoryItemResponse], error)

	CreateSupplier(ctx context.Context, owner uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.SupplierResponse], error)

	CreateCustomer(ctx context.Context, owner uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	ListCustomers(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.CustomerResponse], error)
}

type catalogService struct {
	items     repository.InventoryItemRepository
	suppliers repository.SupplierRepository
	customers repository.CustomerRepository
}

func NewCatalogService(
	items repository.InventoryItemRepository,
	suppliers repository.SupplierRepository,
	customers repository.CustomerRepository,
) CatalogService {
	return &catalogService{items: items, suppliers: suppliers, customers: customers}
}

func (s *catalogService) CreateItem(ctx context.Context, owner uuid.UUID, req dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	return s.createItem(ctx, owner, req, false)
}

func (s *catalogService) CreateDefaultItem(ctx context.Context, req dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	return s.createItem(ctx, uuid.Nil, req, true)
}

func (s *catalogService) createItem(ctx context.Context, owner uuid.UUID, req dto.CreateInventoryItemRequest, isDefault bool) (*dto.InventoryItemResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be blank")
	}
	item := &model.InventoryItem{
		OwnerID:   owner,
		Name:      name,
		Unit:      strings.TrimSpace(req.Unit),
		IsDefault: isDefault,
		IsActive:  true,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, mapRepoErr(err, "inventory item")
	}
	resp := toInventoryItemResponse(*item)
	return &resp, nil
}

func (s *catalogService) ListItems(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.InventoryItemResponse], error) {
	items, total, err := s.items.List(ctx, owner, strings.TrimSpace(filter.Search), filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InventoryItemResponse, 0, len(items))
	for _, i := range items {
		data = append(data, toInventoryItemResponse(i))
	}
	return listResponse(data, total, filter), nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, owner uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "must not be blank")
	}
	sup := &model.Supplier{OwnerID: owner, Name: name, Contact: trimmed(req.Contact), IsActive: true}
	if err := s.suppliers.Create(ctx, sup); err != nil {
		return nil, mapRepoErr(err, "supplier")
	}
	resp := toSupplierResponse(*sup)
	return &resp, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.SupplierResponse], error) {
	sups, total, err := s.suppliers.List(ctx, owner, strings.TrimSpace(filter.Search), filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SupplierResponse, 0, len(sups))
	for _, sup := range sups {
		data = append(data, toSupplierResponse(sup))
	}
	return listResponse(data, total, filter), nil
}

func (s *catalogService) CreateCustomer(ctx context.Context, owner uuid.UUID, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	contact := strings.TrimSpace(req.Contact)
	switch {
	case first == "":
		return nil, invalid("first_name", "must not be blank")
	case last == "":
		return nil, invalid("last_name", "must not be blank")
	case contact == "":
		return nil, invalid("contact", "must not be blank")
	}
	c := &model.Customer{
		OwnerID:   owner,
		FirstName: first,
		LastName:  last,
		Contact:   contact,
		Email:     trimmed(req.Email),
		Address:   trimmed(req.Address),
		IsActive:  true,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, mapRepoErr(err, "customer")
	}
	resp := toCustomerResponse(*c)
	return &resp, nil
}

func (s *catalogService) ListCustomers(ctx context.Context, owner uuid.UUID, filter dto.CatalogFilter) (*dto.ListResponse[dto.CustomerResponse], error) {
	cs, total, err := s.customers.List(ctx, owner, strings.TrimSpace(filter.Search), filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CustomerResponse, 0, len(cs))
	for _, c := range cs {
		data = append(data, toCustomerResponse(c))
	}
	return listResponse(data, total, filter), nil
}

func listResponse[T any](data []T, total int64, filter dto.CatalogFilter) *dto.ListResponse[T] {
	return &dto.ListResponse[T]{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
}

// trimmed returns nil for absent or blank optional strings.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
